package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"agrisense/internal/domain/entity"
)

// render writes v as indented JSON or as a human-readable report.
func render(w io.Writer, format string, v any) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	switch r := v.(type) {
	case *entity.SoilAnalysis:
		row(tw, "Soil type", r.SoilType)
		row(tw, "Confidence", fmt.Sprintf("%.0f%%", r.Confidence))
		row(tw, "Estimated pH", r.EstimatedPH)
		row(tw, "Drainage", r.DrainageQuality)
		row(tw, "Composition", fmt.Sprintf("sand %s, silt %s, clay %s, organic %s",
			r.Composition.Sand, r.Composition.Silt, r.Composition.Clay, r.Composition.OrganicMatter))
		row(tw, "Characteristics", strings.Join(r.Characteristics, ", "))
		row(tw, "Recommended plants", strings.Join(r.RecommendedPlants, ", "))
		row(tw, "Care", r.CareInstructions)
	case *entity.DiseaseAnalysis:
		row(tw, "Status", r.Status)
		if r.IsDiseased() {
			row(tw, "Disease", r.DiseaseName)
			row(tw, "Urgency", r.Urgency)
		}
		row(tw, "Confidence", fmt.Sprintf("%.0f%%", r.Confidence))
		row(tw, "Symptoms", strings.Join(r.Symptoms, ", "))
		row(tw, "Recommendation", r.Recommendation)
		if r.PesticideLink != "" {
			row(tw, "Treatment", r.PesticideLink)
		}
	case *entity.CropRecommendation:
		for _, c := range r.SuitableCrops {
			row(tw, c.Name, fmt.Sprintf("%s suitability, %s, expected %s", c.Suitability, c.GrowingPeriod, c.ExpectedYield))
		}
		row(tw, "Soil tips", strings.Join(r.SoilImprovementTips, "; "))
		row(tw, "Market", r.MarketPotential)
	case *entity.YieldPrediction:
		row(tw, "Estimated yield", strings.TrimSpace(r.EstimatedYield+" "+r.Unit))
		row(tw, "Range", r.ConfidenceInterval)
		row(tw, "Limiting factors", strings.Join(r.LimitingFactors, ", "))
		row(tw, "Strategies", strings.Join(r.OptimizationStrategies, "; "))
	default:
		return fmt.Errorf("unsupported result type %T", v)
	}
	return tw.Flush()
}

func row(w io.Writer, label, value string) {
	if value == "" {
		value = "-"
	}
	_, _ = fmt.Fprintf(w, "%s:\t%s\n", label, value)
}
