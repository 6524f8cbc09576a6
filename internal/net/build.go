package net

import "github.com/FlavioCFOliveira/mlgui/internal/config"

// IsReadyForBuild reports whether every layer has been configured. A topology
// without layers is ready.
func (t *Topology) IsReadyForBuild() bool {
	for _, c := range t.components {
		if !c.Configured() {
			return false
		}
	}
	return true
}

// ValidateBuild checks cfg and the topology and returns nil or a BuildErrors
// holding every problem found: missing training fields first, then
// unconfigured layers in id order.
func (t *Topology) ValidateBuild(cfg *config.Training) error {
	var errs BuildErrors
	if cfg == nil {
		for _, f := range []string{config.FieldSavePath, config.FieldDevice, config.FieldOptimizer, config.FieldLoss} {
			errs = append(errs, NewMissingField(f))
		}
	} else {
		for _, f := range cfg.Missing() {
			errs = append(errs, NewMissingField(f))
		}
	}
	for _, c := range t.components {
		if !c.Configured() {
			errs = append(errs, NewUnconfiguredLayer(c.ID))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
