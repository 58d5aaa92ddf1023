package diagnose

import (
	"strings"

	"autodiag/internal/denominator"
)

// turboModels lists model-name fragments known to carry forced induction,
// keyed by lower-cased manufacturer. An unlisted model is assumed naturally
// aspirated unless its name carries an engine designation.
var turboModels = map[string][]string{
	"bmw":           {"335i", "535i", "m235i", "m135i", "340i", "440i", "x3 28i", "x5 35i"},
	"audi":          {"a3", "a4", "a6", "q5", "tt", "s3", "s4", "s5"},
	"mercedes-benz": {"c250", "c300", "e250", "glc250", "cla250", "amg"},
	"volkswagen":    {"gti", "golf r", "jetta gli", "tiguan", "passat"},
	"ford":          {"ecoboost", "mustang", "f-150", "explorer"},
	"honda":         {"civic type r", "accord 2.0t"},
	"mazda":         {"cx-7", "cx-9", "mazdaspeed"},
	"hyundai":       {"veloster n", "sonata 2.0t", "santa fe"},
	"nissan":        {"juke", "sentra", "altima"},
}

// The German brands turbocharged essentially their whole lineup from 2016 on.
var modernTurboBrands = map[string]bool{
	"bmw":           true,
	"audi":          true,
	"mercedes-benz": true,
	"volkswagen":    true,
}

// Engine designations that imply forced induction regardless of model lists.
var turboNameMarkers = []string{"turbo", "tsi", "tfsi", "ecoboost", "tdi", "gti"}

// Model-name tokens that mark a diesel drivetrain.
var dieselNameMarkers = map[string]bool{
	"diesel": true,
	"tdi":    true,
	"dci":    true,
	"hdi":    true,
	"crdi":   true,
}

// Candidate keyword fragments that only make sense on a turbocharged engine.
var turboIssueMarkers = []string{"turbo", "wastegate", "boost", "supercharger"}

// Candidate keyword tokens that only make sense on a diesel engine.
var dieselIssueMarkers = map[string]bool{
	"diesel": true,
	"dpf":    true,
	"def":    true,
	"egr":    true,
}

// plausibleCandidates drops ranked candidates that name components the
// vehicle cannot have, such as a wastegate on a naturally aspirated Camry.
// When the vehicle is unknown, or when filtering would drop every candidate,
// the list is returned unchanged: an implausible diagnosis still beats none.
func plausibleCandidates(candidates []denominator.Candidate, vehicle Vehicle) []denominator.Candidate {
	if strings.TrimSpace(vehicle.Manufacturer) == "" && strings.TrimSpace(vehicle.Model) == "" {
		return candidates
	}

	turbo := vehicleHasTurbo(vehicle)
	diesel := vehicleIsDiesel(vehicle)

	kept := make([]denominator.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if !turbo && isTurboIssue(candidate.Keyword) {
			continue
		}
		if !diesel && isDieselIssue(candidate.Keyword) {
			continue
		}
		kept = append(kept, candidate)
	}
	if len(kept) == 0 {
		return candidates
	}
	return kept
}

// vehicleHasTurbo reports whether the vehicle plausibly carries forced
// induction, from the brand-wide 2016 cutover, the known-model list, and
// engine designations in the model name.
func vehicleHasTurbo(vehicle Vehicle) bool {
	manufacturer := strings.ToLower(strings.TrimSpace(vehicle.Manufacturer))
	model := strings.ToLower(strings.TrimSpace(vehicle.Model))

	if vehicle.Year >= 2016 && modernTurboBrands[manufacturer] {
		return true
	}
	for _, known := range turboModels[manufacturer] {
		if strings.Contains(model, known) {
			return true
		}
	}
	for _, marker := range turboNameMarkers {
		if strings.Contains(model, marker) {
			return true
		}
	}
	return false
}

// vehicleIsDiesel matches whole tokens of the model name so that "Accord"
// is never mistaken for a diesel designation.
func vehicleIsDiesel(vehicle Vehicle) bool {
	for _, token := range strings.Fields(strings.ToLower(vehicle.Model)) {
		if dieselNameMarkers[token] {
			return true
		}
	}
	return false
}

func isTurboIssue(keyword string) bool {
	lower := strings.ToLower(keyword)
	for _, marker := range turboIssueMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isDieselIssue(keyword string) bool {
	for _, token := range strings.Fields(strings.ToLower(keyword)) {
		if dieselIssueMarkers[token] {
			return true
		}
	}
	return false
}
