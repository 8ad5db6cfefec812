package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

// defaultConfidence is assigned to items the model returned without a
// confidence field.
const defaultConfidence = 0.5

// codeBlockRe strips markdown code fences from LLM output.
var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// extractJSON attempts to find a JSON object in the LLM response text.
// It handles common LLM quirks: markdown code blocks, prose before/after
// the JSON.
func extractJSON(raw string) (string, error) {
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}

	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		return raw, nil
	}

	// Largest brace-delimited substring.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// rawEntity is the wire shape of one extracted entity.
type rawEntity struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Traits      []string `json:"traits"`
	Strengths   []string `json:"strengths"`
	Motivations []string `json:"motivations"`
	Confidence  *float64 `json:"confidence"`
	Reason      string   `json:"reason"`
}

// rawPlotNode is the wire shape of one extracted plot event.
type rawPlotNode struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	SequenceNumber int      `json:"sequence_number"`
	Importance     int      `json:"importance"`
	Tension        int      `json:"tension"`
	Characters     []string `json:"characters"`
	Locations      []string `json:"locations"`
	Conflicts      []string `json:"conflicts"`
	Themes         []string `json:"themes"`
	Confidence     *float64 `json:"confidence"`
	Reason         string   `json:"reason"`
}

// rawRelation is the wire shape of one extracted relation.
type rawRelation struct {
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Confidence  *float64 `json:"confidence"`
	TrustLevel  int      `json:"trust_level"`
	Invalid     bool     `json:"invalid"`
	Reason      string   `json:"reason"`
}

// rawExtraction holds each category as raw JSON so one malformed array does
// not fail the whole chunk: bad substructures decode to empty.
type rawExtraction struct {
	Characters  json.RawMessage `json:"characters"`
	Locations   json.RawMessage `json:"locations"`
	Conflicts   json.RawMessage `json:"conflicts"`
	Motivations json.RawMessage `json:"motivations"`
	Themes      json.RawMessage `json:"themes"`
	PlotNodes   json.RawMessage `json:"plot_nodes"`
	Relations   json.RawMessage `json:"relations"`
	Entities    json.RawMessage `json:"entities"` // validator responses
}

// decodeList unmarshals a raw array, returning nil on any error.
func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func confidenceOrDefault(c *float64) float64 {
	if c == nil {
		return defaultConfidence
	}
	if *c < 0 {
		return 0
	}
	if *c > 1 {
		return 1
	}
	return *c
}

func clampScale(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// parseCandidateSet parses an extraction response into a candidate set.
// Prose around the JSON is tolerated; invalid substructures are coerced to
// empty rather than failing the chunk.
func parseCandidateSet(content string) (entities.CandidateSet, error) {
	var set entities.CandidateSet

	jsonStr, err := extractJSON(content)
	if err != nil {
		return set, err
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return set, fmt.Errorf("unmarshalling extraction result: %w", err)
	}

	appendEntities := func(kind entities.NodeKind, raws []rawEntity) {
		for _, r := range raws {
			if strings.TrimSpace(r.Name) == "" {
				continue
			}
			c := entities.CandidateEntity{
				Kind:        kind,
				Name:        strings.TrimSpace(r.Name),
				Description: strings.TrimSpace(r.Description),
				Confidence:  confidenceOrDefault(r.Confidence),
				Reason:      r.Reason,
			}
			if kind == entities.KindCharacter {
				c.Status = r.Status
				c.Traits = r.Traits
				c.Strengths = r.Strengths
				c.Motivations = r.Motivations
			}
			set.Entities = append(set.Entities, c)
		}
	}

	appendEntities(entities.KindCharacter, decodeList[rawEntity](raw.Characters))
	appendEntities(entities.KindLocation, decodeList[rawEntity](raw.Locations))
	appendEntities(entities.KindConflict, decodeList[rawEntity](raw.Conflicts))
	appendEntities(entities.KindMotivation, decodeList[rawEntity](raw.Motivations))
	appendEntities(entities.KindTheme, decodeList[rawEntity](raw.Themes))

	for _, r := range decodeList[rawPlotNode](raw.PlotNodes) {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		set.PlotNodes = append(set.PlotNodes, entities.CandidatePlotNode{
			Title:          strings.TrimSpace(r.Title),
			Description:    strings.TrimSpace(r.Description),
			SequenceNumber: r.SequenceNumber,
			Importance:     clampScale(r.Importance, 100),
			Tension:        clampScale(r.Tension, 100),
			Characters:     r.Characters,
			Locations:      r.Locations,
			Conflicts:      r.Conflicts,
			Themes:         r.Themes,
			Confidence:     confidenceOrDefault(r.Confidence),
			Reason:         r.Reason,
		})
	}

	for _, r := range decodeList[rawRelation](raw.Relations) {
		if strings.TrimSpace(r.Source) == "" || strings.TrimSpace(r.Target) == "" {
			continue
		}
		set.Relations = append(set.Relations, entities.CandidateRelation{
			Source:      strings.TrimSpace(r.Source),
			Target:      strings.TrimSpace(r.Target),
			Type:        r.Type,
			Description: strings.TrimSpace(r.Description),
			Confidence:  confidenceOrDefault(r.Confidence),
			TrustLevel:  clampScale(r.TrustLevel, 100),
			Invalid:     r.Invalid,
			Reason:      r.Reason,
		})
	}

	return set, nil
}

// parseValidatedSet parses a validator response. The validator returns one
// flat "entities" array with a "type" field per item instead of the seven
// extraction arrays.
func parseValidatedSet(content string) (entities.CandidateSet, error) {
	var set entities.CandidateSet

	jsonStr, err := extractJSON(content)
	if err != nil {
		return set, err
	}

	var raw struct {
		Entities  []rawValidatedEntity `json:"entities"`
		PlotNodes json.RawMessage      `json:"plot_nodes"`
		Relations json.RawMessage      `json:"relations"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return set, fmt.Errorf("unmarshalling validation result: %w", err)
	}

	for _, r := range raw.Entities {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		set.Entities = append(set.Entities, entities.CandidateEntity{
			Kind:        entities.NodeKind(strings.ToLower(strings.TrimSpace(r.Type))),
			Name:        strings.TrimSpace(r.Name),
			Description: strings.TrimSpace(r.Description),
			Confidence:  confidenceOrDefault(r.Confidence),
			Reason:      r.Reason,
			Status:      r.Status,
			Traits:      r.Traits,
			Strengths:   r.Strengths,
			Motivations: r.Motivations,
		})
	}

	for _, r := range decodeList[rawPlotNode](raw.PlotNodes) {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		set.PlotNodes = append(set.PlotNodes, entities.CandidatePlotNode{
			Title:          strings.TrimSpace(r.Title),
			Description:    strings.TrimSpace(r.Description),
			SequenceNumber: r.SequenceNumber,
			Importance:     clampScale(r.Importance, 100),
			Tension:        clampScale(r.Tension, 100),
			Characters:     r.Characters,
			Locations:      r.Locations,
			Conflicts:      r.Conflicts,
			Themes:         r.Themes,
			Confidence:     confidenceOrDefault(r.Confidence),
			Reason:         r.Reason,
		})
	}

	for _, r := range decodeList[rawRelation](raw.Relations) {
		if strings.TrimSpace(r.Source) == "" || strings.TrimSpace(r.Target) == "" {
			continue
		}
		set.Relations = append(set.Relations, entities.CandidateRelation{
			Source:      strings.TrimSpace(r.Source),
			Target:      strings.TrimSpace(r.Target),
			Type:        r.Type,
			Description: strings.TrimSpace(r.Description),
			Confidence:  confidenceOrDefault(r.Confidence),
			TrustLevel:  clampScale(r.TrustLevel, 100),
			Invalid:     r.Invalid,
			Reason:      r.Reason,
		})
	}

	return set, nil
}

// rawValidatedEntity is a rawEntity plus the type discriminator.
type rawValidatedEntity struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Traits      []string `json:"traits"`
	Strengths   []string `json:"strengths"`
	Motivations []string `json:"motivations"`
	Confidence  *float64 `json:"confidence"`
	Reason      string   `json:"reason"`
}
