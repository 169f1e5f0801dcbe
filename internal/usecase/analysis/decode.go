package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"agrisense/internal/domain/entity"
	"agrisense/internal/infra/analyzer"
)

// decodeResponse unmarshals raw into out after checking that every required
// top-level property of schema is present.
func decodeResponse(raw string, schema *analyzer.Schema, out any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if schema != nil {
		var missing []string
		for _, name := range schema.Required {
			if v, ok := fields[name]; !ok || string(v) == "null" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing %s", ErrInvalidResponse, strings.Join(missing, ", "))
		}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	// 0-1 の比率で返すモデルもある。1 は 1% として扱う
	if v > 0 && v < 1 {
		v *= 100
	}
	return math.Round(math.Max(0, math.Min(100, v))*10) / 10
}

func normalizeSoil(s *entity.SoilAnalysis) error {
	s.SoilType = strings.TrimSpace(s.SoilType)
	if s.SoilType == "" {
		return fmt.Errorf("%w: soilType is empty", ErrInvalidResponse)
	}
	s.Confidence = clampPercent(s.Confidence)
	if s.Characteristics == nil {
		s.Characteristics = []string{}
	}
	if s.RecommendedPlants == nil {
		s.RecommendedPlants = []string{}
	}
	return nil
}

var urgencies = []string{"Low", "Medium", "High", "Critical"}

func normalizeDisease(d *entity.DiseaseAnalysis) error {
	status := strings.ToLower(strings.TrimSpace(d.Status))
	name := strings.TrimSpace(d.DiseaseName)
	switch {
	case status == "healthy":
		d.Status = entity.PlantHealthy
	case strings.HasPrefix(status, "disease"), status == "infected", status == "unhealthy":
		d.Status = entity.PlantDiseased
	case name != "" && !strings.EqualFold(name, "none"):
		d.Status = entity.PlantDiseased
	case status == "":
		return fmt.Errorf("%w: status is empty", ErrInvalidResponse)
	default:
		d.Status = entity.PlantHealthy
	}
	d.DiseaseName = name
	d.Confidence = clampPercent(d.Confidence)

	d.Urgency = normalizeUrgency(d.Urgency, d.Status)
	if d.Symptoms == nil {
		d.Symptoms = []string{}
	}

	if d.IsDiseased() {
		if d.DiseaseName == "" {
			d.DiseaseName = "Unknown disease"
		}
		d.PesticideLink = pesticideLink(d.PesticideLink, d.DiseaseName)
	} else {
		d.PesticideLink = ""
	}
	return nil
}

// pesticideLink keeps a usable URL. Models often name the product instead
// ("Mancozeb 75% WP"); that name becomes the search term, and only an empty
// field falls back to the disease name.
func pesticideLink(raw, disease string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return entity.PesticideSearchURL(disease)
	case entity.ValidateURL("pesticideLink", raw) == nil:
		return raw
	default:
		return entity.PesticideSearchURL(raw)
	}
}

func normalizeUrgency(u, status string) string {
	for _, v := range urgencies {
		if strings.EqualFold(strings.TrimSpace(u), v) {
			return v
		}
	}
	if status == entity.PlantHealthy {
		return "Low"
	}
	return "Medium"
}

func normalizeCrops(c *entity.CropRecommendation) error {
	if len(c.SuitableCrops) == 0 {
		return fmt.Errorf("%w: no suitable crops", ErrInvalidResponse)
	}
	for i := range c.SuitableCrops {
		if c.SuitableCrops[i].Requirements == nil {
			c.SuitableCrops[i].Requirements = []string{}
		}
	}
	if c.SoilImprovementTips == nil {
		c.SoilImprovementTips = []string{}
	}
	return nil
}

func normalizeYield(y *entity.YieldPrediction) error {
	y.EstimatedYield = strings.TrimSpace(y.EstimatedYield)
	if y.EstimatedYield == "" {
		return fmt.Errorf("%w: estimatedYield is empty", ErrInvalidResponse)
	}
	if y.LimitingFactors == nil {
		y.LimitingFactors = []string{}
	}
	if y.OptimizationStrategies == nil {
		y.OptimizationStrategies = []string{}
	}
	return nil
}
