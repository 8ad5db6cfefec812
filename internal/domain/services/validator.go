package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

const (
	// maxValidationItems caps each candidate category to bound prompt size.
	maxValidationItems = 200
	// validationMaxTokens bounds the validation response size.
	validationMaxTokens = 8192
	// degradedTypeFactor scales confidence down when a relation type had to
	// be coerced onto the closed enum.
	degradedTypeFactor = 0.8
)

// Validator reconciles the full merged candidate set in a single language
// model pass: merges remaining duplicates, checks relation endpoints,
// normalizes relation types, and re-scores confidence. The pipeline never
// fails at this stage; on any call or parse failure the validator falls
// back to the unvalidated input and only quality degrades.
type Validator struct {
	llm ports.LLMClient
}

// NewValidator creates a new validator.
func NewValidator(llm ports.LLMClient) *Validator {
	return &Validator{llm: llm}
}

// Validate returns the reconciled candidate set and any quality issues
// encountered. The registry is consulted for alias canonicalization during
// the local endpoint re-check.
func (v *Validator) Validate(ctx context.Context, set entities.CandidateSet, reg *Registry) (entities.CandidateSet, []string) {
	var issues []string

	capped := capCandidates(set)
	validated, err := v.callModel(ctx, capped)
	if err != nil {
		slog.Warn("validation: falling back to merged registry", "error", err)
		issues = append(issues, fmt.Sprintf("validation degraded: %v", err))
		validated = capped
	}

	finalize(&validated, reg)
	return validated, issues
}

// callModel runs the single validation call over the candidate set.
func (v *Validator) callModel(ctx context.Context, set entities.CandidateSet) (entities.CandidateSet, error) {
	payload, err := json.Marshal(set)
	if err != nil {
		return entities.CandidateSet{}, fmt.Errorf("marshaling candidates: %w", err)
	}

	content, err := v.llm.Generate(ctx, []ports.Message{
		{Role: ports.RoleUser, Content: fmt.Sprintf(validationPrompt, string(payload))},
	}, 0.1, validationMaxTokens)
	if err != nil {
		return entities.CandidateSet{}, fmt.Errorf("validation call: %w", err)
	}

	validated, err := parseValidatedSet(content)
	if err != nil {
		return entities.CandidateSet{}, fmt.Errorf("parsing validation response: %w", err)
	}
	if validated.Empty() && !set.Empty() {
		return entities.CandidateSet{}, fmt.Errorf("validation response dropped all candidates")
	}

	return validated, nil
}

// finalize applies the local defense-in-depth pass after the model call:
// relation types are forced onto the closed enum and every relation whose
// normalized endpoints are absent from the final name set is marked invalid
// regardless of what the model said.
func finalize(set *entities.CandidateSet, reg *Registry) {
	names := make(map[string]bool, len(set.Entities)+len(set.PlotNodes))
	for _, c := range set.Entities {
		names[entities.NormalizeName(c.Name)] = true
	}
	for _, p := range set.PlotNodes {
		names[entities.NormalizeName(p.Title)] = true
	}

	for i := range set.Relations {
		rel := &set.Relations[i]

		normalized, ok := entities.NormalizeRelationType(rel.Type)
		if !ok {
			rel.Confidence *= degradedTypeFactor
			if rel.Reason == "" {
				rel.Reason = fmt.Sprintf("unrecognized relation type %q degraded to %s", rel.Type, normalized)
			}
		}
		rel.Type = string(normalized)

		src := entities.NormalizeName(reg.canonicalizeAny(rel.Source))
		dst := entities.NormalizeName(reg.canonicalizeAny(rel.Target))
		if !names[src] || !names[dst] {
			rel.Invalid = true
			if rel.Reason == "" {
				rel.Reason = "relation endpoint not present in validated entity set"
			}
		}
	}

	for i := range set.Entities {
		if set.Entities[i].Reason == "" {
			set.Entities[i].Reason = "accepted by validation"
		}
	}
}

// capCandidates truncates each category to maxValidationItems.
func capCandidates(set entities.CandidateSet) entities.CandidateSet {
	out := set
	if len(out.Entities) > maxValidationItems {
		out.Entities = out.Entities[:maxValidationItems]
	}
	if len(out.PlotNodes) > maxValidationItems {
		out.PlotNodes = out.PlotNodes[:maxValidationItems]
	}
	if len(out.Relations) > maxValidationItems {
		out.Relations = out.Relations[:maxValidationItems]
	}
	return out
}
