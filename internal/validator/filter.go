package validator

import (
	"go.uber.org/zap"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// Filter validates each trajectory in order and returns the accepted ones
// with a report of everything that was rejected or repaired.
func (v *Validator) Filter(trajs []*models.Trajectory) ([]*models.Trajectory, models.ValidationReport) {
	report := models.ValidationReport{
		Input:       len(trajs),
		IssueCounts: map[string]int{},
		Rejections:  []models.Rejection{},
	}
	accepted := make([]*models.Trajectory, 0, len(trajs))
	for _, t := range trajs {
		ok, issues := v.Validate(t)
		repaired := false
		for _, is := range issues {
			report.IssueCounts[is.Rule]++
			if is.Severity == models.SeverityRepair || is.Rule == RuleOversizedValue || is.Rule == RuleOversizedTarget {
				repaired = true
			}
		}
		if !ok {
			report.Rejected++
			report.Rejections = append(report.Rejections, models.Rejection{TrajectoryID: t.TrajectoryID, Issues: issues})
			zap.L().Info("trajectory rejected",
				zap.String("trajectory_id", t.TrajectoryID),
				zap.Int("issues", len(issues)),
				zap.String("first_rule", issues[0].Rule),
			)
			continue
		}
		if repaired {
			report.Repaired++
		}
		accepted = append(accepted, t)
	}
	report.Accepted = len(accepted)
	return accepted, report
}
