package dataset

import (
	"context"

	"github.com/goccy/go-yaml"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
)

// Audit collects everything the run refused to resolve silently: field
// disagreements between sources and records that matched nothing in the
// authoritative set.
type Audit struct {
	Conflicts []Conflict  `yaml:"conflicts"`
	Unmatched []Unmatched `yaml:"unmatched"`
}

// Conflict is one recorded disagreement.
type Conflict struct {
	Code   int    `yaml:"code"`
	Field  string `yaml:"field,omitempty"`
	Reason string `yaml:"reason"`
}

// Unmatched is a source record with no counterpart in the authoritative
// set, typically an abolished or since-renamed division.
type Unmatched struct {
	Source string          `yaml:"source"`
	Record division.Record `yaml:"record"`
}

// AddConflicts appends conflict errors to the audit.
func (a *Audit) AddConflicts(conflicts []*errors.ConflictError) {
	for _, c := range conflicts {
		a.Conflicts = append(a.Conflicts, Conflict{Code: c.Code, Field: c.Field, Reason: c.Reason})
	}
}

// AddUnmatched appends unmatched records from one source.
func (a *Audit) AddUnmatched(source string, records []division.Record) {
	for _, r := range records {
		a.Unmatched = append(a.Unmatched, Unmatched{Source: source, Record: r})
	}
}

// Empty reports whether the audit has nothing to say.
func (a *Audit) Empty() bool {
	return len(a.Conflicts) == 0 && len(a.Unmatched) == 0
}

// WriteAudit writes audit.yaml. An empty audit still writes the file, so a
// clean run is distinguishable from a run that never finished.
func (w *Writer) WriteAudit(ctx context.Context, audit *Audit) error {
	data, err := yaml.Marshal(audit)
	if err != nil {
		return errors.WrapIO("write", "audit.yaml", err)
	}

	path := w.Path("audit.yaml")
	if err := writeAtomic(path, data); err != nil {
		return err
	}

	log := logging.FromContext(ctx)
	if audit.Empty() {
		log.Info().Str("path", path).Msg("wrote empty audit")
	} else {
		log.Warn().Str("path", path).
			Int("conflicts", len(audit.Conflicts)).
			Int("unmatched", len(audit.Unmatched)).
			Msg("wrote audit with findings")
	}
	return nil
}
