package entity

import (
	"net/url"
	"strings"
)

// Plant health statuses returned by disease diagnosis.
const (
	PlantHealthy  = "Healthy"
	PlantDiseased = "Diseased"
)

// SoilAnalysis is the model's classification of a soil photo.
type SoilAnalysis struct {
	SoilType          string          `json:"soilType"`
	Confidence        float64         `json:"confidence"`
	Characteristics   []string        `json:"characteristics"`
	EstimatedPH       string          `json:"estimatedPH"`
	DrainageQuality   string          `json:"drainageQuality"`
	Composition       SoilComposition `json:"composition"`
	RecommendedPlants []string        `json:"recommendedPlants"`
	CareInstructions  string          `json:"careInstructions"`
}

// SoilComposition holds estimated percentages as free text ("40%").
type SoilComposition struct {
	Sand          string `json:"sand"`
	Silt          string `json:"silt"`
	Clay          string `json:"clay"`
	OrganicMatter string `json:"organicMatter"`
}

// DiseaseAnalysis is the model's diagnosis of a leaf or plant photo.
type DiseaseAnalysis struct {
	Status         string   `json:"status"`
	DiseaseName    string   `json:"diseaseName"`
	Confidence     float64  `json:"confidence"`
	Urgency        string   `json:"urgency"`
	Symptoms       []string `json:"symptoms"`
	Recommendation string   `json:"recommendation"`
	PesticideLink  string   `json:"pesticideLink"`
}

// IsDiseased reports whether the plant was diagnosed as diseased.
func (d *DiseaseAnalysis) IsDiseased() bool {
	return d.Status == PlantDiseased
}

// PesticideSearchURL builds a shopping search link for the given treatment.
func PesticideSearchURL(treatment string) string {
	q := "buy " + strings.TrimSpace(treatment) + " pesticide online"
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

// CropRecommendation lists crops suited to a soil and region.
type CropRecommendation struct {
	SuitableCrops       []SuitableCrop `json:"suitableCrops"`
	SoilImprovementTips []string       `json:"soilImprovementTips"`
	MarketPotential     string         `json:"marketPotential"`
}

// SuitableCrop is one recommended crop.
type SuitableCrop struct {
	Name          string   `json:"name"`
	Suitability   string   `json:"suitability"`
	GrowingPeriod string   `json:"growingPeriod"`
	ExpectedYield string   `json:"expectedYield"`
	Requirements  []string `json:"requirements"`
}

// YieldPrediction is the model's yield estimate for a planting.
type YieldPrediction struct {
	EstimatedYield         string   `json:"estimatedYield"`
	Unit                   string   `json:"unit"`
	ConfidenceInterval     string   `json:"confidenceInterval"`
	LimitingFactors        []string `json:"limitingFactors"`
	OptimizationStrategies []string `json:"optimizationStrategies"`
}
