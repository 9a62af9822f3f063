package validator

// Rule names recorded on issues.
const (
	// Hard rules.
	RuleActionCount     = "action_count"
	RuleTimestampOrder  = "timestamp_order"
	RuleActionType      = "action_type"
	RuleDuplicateID     = "duplicate_action_id"
	RuleNavigateURL     = "navigate_url"
	RuleTypeValue       = "type_value"
	RuleSelectOption    = "select_option_index"
	RuleUnsafeSelector  = "unsafe_selector"
	RuleConfidenceRange = "confidence_range"
	RuleSoftThreshold   = "soft_issue_threshold"

	// Soft rules.
	RuleNavigationLoop  = "navigation_loop"
	RuleDomainDrift     = "domain_drift"
	RuleWorkflowOrder   = "workflow_order"
	RuleCoordinates     = "coordinates_out_of_bounds"
	RuleOversizedValue  = "oversized_value"
	RuleOversizedTarget = "oversized_selector"

	// Repairs.
	RuleRenamedID = "renamed_action_id"
)

var unsafeSelectorMarkers = []string{"javascript:", "data:", "vbscript:"}
