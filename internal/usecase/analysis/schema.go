package analysis

import (
	a "agrisense/internal/infra/analyzer"
)

var soilSchema = a.Object("Soil analysis",
	a.Prop("soilType", a.String("Primary soil type, e.g. Loamy, Sandy, Clay")),
	a.Prop("confidence", a.Number("Confidence percentage from 0 to 100")),
	a.Prop("characteristics", a.ArrayOf("Key physical characteristics", a.String(""))),
	a.Prop("estimatedPH", a.String("Estimated pH range, e.g. 6.0-7.0")),
	a.Prop("drainageQuality", a.String("Drainage characteristics")),
	a.Prop("composition", a.Object("Estimated composition percentages",
		a.Prop("sand", a.String("")),
		a.Prop("silt", a.String("")),
		a.Prop("clay", a.String("")),
		a.Prop("organicMatter", a.String("")))),
	a.Prop("recommendedPlants", a.ArrayOf("Five plants that thrive in this soil", a.String(""))),
	a.Prop("careInstructions", a.String("Professional care instructions")),
)

var diseaseSchema = a.Object("Plant health diagnosis",
	a.Prop("status", a.Enum("Overall plant health", "Healthy", "Diseased")),
	a.Prop("diseaseName", a.String("Disease name, or None when healthy")),
	a.Prop("confidence", a.Number("Confidence percentage from 0 to 100")),
	a.Prop("urgency", a.Enum("Treatment urgency", "Low", "Medium", "High", "Critical")),
	a.Prop("symptoms", a.ArrayOf("Visible symptoms", a.String(""))),
	a.Prop("recommendation", a.String("Recommended treatment")),
	a.Prop("pesticideLink", a.String("Where to buy the recommended pesticide, may be empty")),
)

var cropsSchema = a.Object("Crop recommendation",
	a.Prop("suitableCrops", a.ArrayOf("Suitable crops", a.Object("Crop",
		a.Prop("name", a.String("")),
		a.Prop("suitability", a.String("Suitability rating")),
		a.Prop("growingPeriod", a.String("")),
		a.Prop("expectedYield", a.String("")),
		a.Prop("requirements", a.ArrayOf("", a.String("")))))),
	a.Prop("soilImprovementTips", a.ArrayOf("Soil improvement tips", a.String(""))),
	a.Prop("marketPotential", a.String("Market potential summary")),
)

var yieldSchema = a.Object("Yield prediction",
	a.Prop("estimatedYield", a.String("Estimated total yield")),
	a.Prop("unit", a.String("Unit of the estimate, e.g. tonnes")),
	a.Prop("confidenceInterval", a.String("")),
	a.Prop("limitingFactors", a.ArrayOf("", a.String(""))),
	a.Prop("optimizationStrategies", a.ArrayOf("", a.String(""))),
)

func schemaFor(kind a.Kind) *a.Schema {
	switch kind {
	case a.KindSoil:
		return soilSchema
	case a.KindDisease:
		return diseaseSchema
	case a.KindCrops:
		return cropsSchema
	case a.KindYield:
		return yieldSchema
	}
	return nil
}
