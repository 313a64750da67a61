package model

// LoadCategory groups electrical loads for circuit assignment.
type LoadCategory string

const (
	LoadSocketOutlet   LoadCategory = "socket_outlet"
	LoadLighting       LoadCategory = "lighting"
	LoadCooking        LoadCategory = "cooking"
	LoadHeating        LoadCategory = "heating"
	LoadEVCharger      LoadCategory = "ev_charger"
	LoadFixedAppliance LoadCategory = "fixed_appliance"
)

// LoadEntry is one synthesized electrical load derived from room points.
type LoadEntry struct {
	Description     string       `json:"description"`
	Room            string       `json:"room"`
	Category        LoadCategory `json:"category"`
	RatedPowerWatts int          `json:"rated_power_watts"`
	Quantity        int          `json:"quantity"`
	PowerFactor     float64      `json:"power_factor"`
	Continuous      bool         `json:"continuous"`
	WetRoom         bool         `json:"wet_room"`
}

// Circuit is one breaker group of the panel.
type Circuit struct {
	Number         int          `json:"number"`
	Description    string       `json:"description"`
	Category       LoadCategory `json:"category"`
	Loads          []LoadEntry  `json:"loads"`
	DesignCurrentA float64      `json:"design_current_a"`
	BreakerA       int          `json:"breaker_a"`
	CableSectionMM float64      `json:"cable_section_mm2"`
	CableMeters    float64      `json:"cable_meters"`
	Phase          int          `json:"phase"`
	ThreePhase     bool         `json:"three_phase"`
	RCDProtected   bool         `json:"rcd_protected"`
	ServesWetRoom  bool         `json:"serves_wet_room"`
}

// Panel aggregates all circuits of the installation.
type Panel struct {
	MainBreakerA    int       `json:"main_breaker_a"`
	SupplyPhase     SupplyPhase `json:"supply_phase"`
	Circuits        []Circuit `json:"circuits"`
	PhaseCurrentA   []float64 `json:"phase_current_a"`
	RemainingA      float64   `json:"remaining_a"`
	TotalLoadWatts  int       `json:"total_load_watts"`
	TotalCableMeter float64   `json:"total_cable_meters"`
}

// IssueSeverity grades a compliance finding.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ComplianceIssue is a detected deviation from installation regulations.
// Errors violate a hard rule; warnings are advisory and never flip the
// compliant flag.
type ComplianceIssue struct {
	Severity    IssueSeverity `json:"severity"`
	Description string        `json:"description"`
	Standard    string        `json:"standard"`
}

// ElectricalEstimate is the sizing and compliance result. It is optional in
// the overall estimation result.
type ElectricalEstimate struct {
	Loads     []LoadEntry       `json:"loads"`
	Panel     Panel             `json:"panel"`
	Issues    []ComplianceIssue `json:"issues"`
	Compliant bool              `json:"compliant"`
}

// Errors returns the error-severity subset of issues.
func (e *ElectricalEstimate) Errors() []ComplianceIssue {
	var out []ComplianceIssue
	for _, issue := range e.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}
