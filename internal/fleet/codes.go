package fleet

// Quick update check-sheet codes. Technicians tick boxes in the field;
// the service expands them into readable record text so the maintenance
// history stays searchable without a code legend.

var problemCodeLabels = map[string]string{
	"paper_jam":      "Paper jam",
	"streaky_print":  "Streaky or faded print",
	"toner_leak":     "Toner leak",
	"error_code":     "Error code displayed",
	"no_power":       "No power",
	"grinding_noise": "Grinding noise",
	"offline":        "Not responding on network",
}

var solutionCodeLabels = map[string]string{
	"cleared_jam":      "Cleared paper jam",
	"replaced_toner":   "Replaced toner cartridge",
	"cleaned_drum":     "Cleaned drum unit",
	"replaced_fuser":   "Replaced fuser assembly",
	"replaced_rollers": "Replaced pickup rollers",
	"firmware_update":  "Updated firmware",
	"power_cycle":      "Power cycled and recalibrated",
}

// ProblemCodes lists the recognized problem check-sheet codes.
func ProblemCodes() map[string]string {
	out := make(map[string]string, len(problemCodeLabels))
	for k, v := range problemCodeLabels {
		out[k] = v
	}
	return out
}

// SolutionCodes lists the recognized solution check-sheet codes.
func SolutionCodes() map[string]string {
	out := make(map[string]string, len(solutionCodeLabels))
	for k, v := range solutionCodeLabels {
		out[k] = v
	}
	return out
}
