package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

// CheckRule names one consistency check.
type CheckRule string

const (
	CheckSpatiotemporal  CheckRule = "spatiotemporal"
	CheckCharacterStatus CheckRule = "character_status"
	CheckMotivation      CheckRule = "motivation"
	CheckRelationship    CheckRule = "relationship"
	CheckKnowledge       CheckRule = "knowledge_ability"
	CheckWorldRule       CheckRule = "world_rule"
	CheckPlotCoherence   CheckRule = "plot_coherence"
)

// AllCheckRules is the default rule set, in report order.
var AllCheckRules = []CheckRule{
	CheckSpatiotemporal,
	CheckCharacterStatus,
	CheckMotivation,
	CheckRelationship,
	CheckKnowledge,
	CheckWorldRule,
	CheckPlotCoherence,
}

const (
	// importantPlotThreshold marks plots whose characters need motivation.
	importantPlotThreshold = 80
	// trustDeltaThreshold flags social bonds whose trust level jumped.
	trustDeltaThreshold = 50
	// influencePathDepth bounds the path search between sequential plots.
	influencePathDepth = 3
)

// deathKeywords mark a plot as death-associated for the character it involves.
var deathKeywords = []string{"dies", "died", "death", "killed", "slain", "perished", "死", "身亡", "牺牲", "丧命"}

// abilityTerms is the keyword heuristic for the knowledge check: terms a
// plot description can demand from an involved character's strengths.
var abilityTerms = []string{
	"sword", "archery", "magic", "alchemy", "medicine", "healing",
	"strategy", "tracking", "stealth", "forging", "navigation",
	"剑", "弓", "法术", "炼丹", "医术", "兵法",
}

// nonViolationMarkers exempt a plot from the world-rule check when present.
var nonViolationMarkers = []string{
	"according to", "complies with", "within the rule", "without breaking",
	"as permitted", "遵守", "按照", "符合",
}

// ConsistencyService audits the committed graph for narrative-logic
// violations. Each check is stateless and independent: a failed store read
// logs and contributes zero issues rather than aborting the run.
type ConsistencyService struct {
	graph  ports.GraphStore
	scorer *Scorer
}

// NewConsistencyService creates a consistency service.
func NewConsistencyService(graph ports.GraphStore, scorer *Scorer) *ConsistencyService {
	return &ConsistencyService{
		graph:  graph,
		scorer: scorer,
	}
}

// Check runs the requested rules (default: all seven) and returns the
// scored report.
func (s *ConsistencyService) Check(ctx context.Context, storyID string, rules []CheckRule) (*entities.ConsistencyReport, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, errors.New("story ID is required")
	}
	if len(rules) == 0 {
		rules = AllCheckRules
	}

	checks := map[CheckRule]func(context.Context, string) ([]entities.ConsistencyIssue, error){
		CheckSpatiotemporal:  s.checkSpatiotemporal,
		CheckCharacterStatus: s.checkCharacterStatus,
		CheckMotivation:      s.checkMotivation,
		CheckRelationship:    s.checkRelationship,
		CheckKnowledge:       s.checkKnowledge,
		CheckWorldRule:       s.checkWorldRule,
		CheckPlotCoherence:   s.checkPlotCoherence,
	}

	var issues []entities.ConsistencyIssue
	for _, rule := range rules {
		check, ok := checks[rule]
		if !ok {
			slog.Warn("consistency: unknown rule skipped", "rule", rule)
			continue
		}
		found, err := check(ctx, storyID)
		if err != nil {
			slog.Warn("consistency: check failed", "rule", rule, "error", err)
			continue
		}
		issues = append(issues, found...)
	}

	report := s.scorer.BuildReport(storyID, issues)
	report.ScanTime = time.Now()
	return report, nil
}

// checkSpatiotemporal flags two distinct plots with the same sequence
// number, a shared character, and differing non-empty locations: one body
// cannot be in two places at the same narrative moment.
func (s *ConsistencyService) checkSpatiotemporal(ctx context.Context, storyID string) ([]entities.ConsistencyIssue, error) {
	plots, err := s.graph.PlotNodesByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading plot nodes: %w", err)
	}

	bySeq := make(map[int][]entities.PlotNode)
	for _, p := range plots {
		bySeq[p.SequenceNumber] = append(bySeq[p.SequenceNumber], p)
	}

	var issues []entities.ConsistencyIssue
	for seq, group := range bySeq {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				locA, locB := a.PrimaryLocation(), b.PrimaryLocation()
				if locA == "" || locB == "" || locA == locB {
					continue
				}
				shared := sharedStrings(a.CharactersInvolved, b.CharactersInvolved)
				if len(shared) == 0 {
					continue
				}
				issues = append(issues, entities.ConsistencyIssue{
					ID:       uuid.New().String(),
					Category: entities.IssueSpatiotemporal,
					Severity: entities.SeverityCritical,
					Title:    "Character in two places at once",
					Description: fmt.Sprintf("plots %q and %q share sequence number %d and character(s) %s but happen in %q and %q",
						a.Title, b.Title, seq, strings.Join(shared, ", "), locA, locB),
					Location:    locA + " / " + locB,
					AffectedIDs: []string{a.ID, b.ID},
					Evidence: map[string]any{
						"sequence_number": seq,
						"locations":       []string{locA, locB},
						"characters":      shared,
					},
					SuggestedFix: "reorder one plot or remove the shared character from one scene",
					Confidence:   0.95,
				})
			}
		}
	}
	return issues, nil
}

// checkCharacterStatus flags deceased characters who still appear in plots
// after the earliest plot associated with their death.
func (s *ConsistencyService) checkCharacterStatus(ctx context.Context, storyID string) ([]entities.ConsistencyIssue, error) {
	chars, err := s.graph.CharactersByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading characters: %w", err)
	}
	plots, err := s.graph.PlotNodesByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading plot nodes: %w", err)
	}

	var issues []entities.ConsistencyIssue
	for _, ch := range chars {
		if ch.Status != entities.StatusDeceased {
			continue
		}

		deathSeq, found := 0, false
		for _, p := range plots {
			if !p.Involves(ch.ID) || !mentionsDeath(p) {
				continue
			}
			if !found || p.SequenceNumber < deathSeq {
				deathSeq = p.SequenceNumber
				found = true
			}
		}
		if !found {
			continue
		}

		var postDeath []entities.PlotNode
		for _, p := range plots {
			if p.Involves(ch.ID) && p.SequenceNumber > deathSeq {
				postDeath = append(postDeath, p)
			}
		}
		if len(postDeath) == 0 {
			continue
		}

		affected := []string{ch.ID}
		titles := make([]string, 0, len(postDeath))
		seqs := make([]int, 0, len(postDeath))
		for _, p := range postDeath {
			affected = append(affected, p.ID)
			titles = append(titles, p.Title)
			seqs = append(seqs, p.SequenceNumber)
		}

		issues = append(issues, entities.ConsistencyIssue{
			ID:       uuid.New().String(),
			Category: entities.IssueCharacterStatus,
			Severity: entities.SeverityCritical,
			Title:    "Deceased character still active",
			Description: fmt.Sprintf("%s dies at sequence %d but is involved in later plot(s): %s",
				ch.Name, deathSeq, strings.Join(titles, "; ")),
			AffectedIDs: affected,
			Evidence: map[string]any{
				"death_sequence":       deathSeq,
				"post_death_sequences": seqs,
			},
			SuggestedFix: "change the character's status, or move the later plots before the death",
			Confidence:   1.0,
		})
	}
	return issues, nil
}

// checkMotivation flags characters involved in high-importance plots who
// have no driven_by edge: major actions need a reason.
func (s *ConsistencyService) checkMotivation(ctx context.Context, storyID string) ([]entities.ConsistencyIssue, error) {
	plots, err := s.graph.PlotNodesByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading plot nodes: %w", err)
	}
	driven, err := s.graph.RelationsByType(ctx, storyID, entities.RelationDrivenBy)
	if err != nil {
		return nil, fmt.Errorf("loading driven_by relations: %w", err)
	}
	chars, err := s.graph.CharactersByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading characters: %w", err)
	}

	motivated := make(map[string]bool, len(driven))
	for _, r := range driven {
		motivated[r.SourceID] = true
	}
	names := make(map[string]string, len(chars))
	for _, ch := range chars {
		names[ch.ID] = ch.Name
	}

	var issues []entities.ConsistencyIssue
	for _, p := range plots {
		if p.Importance < importantPlotThreshold {
			continue
		}
		for _, cid := range p.CharactersInvolved {
			name, isChar := names[cid]
			if !isChar || motivated[cid] {
				continue
			}
			issues = append(issues, entities.ConsistencyIssue{
				ID:       uuid.New().String(),
				Category: entities.IssueMotivation,
				Severity: entities.SeverityHigh,
				Title:    "Unmotivated character in major plot",
				Description: fmt.Sprintf("%s takes part in high-importance plot %q (importance %d) but has no driven_by motivation edge",
					name, p.Title, p.Importance),
				AffectedIDs: []string{cid, p.ID},
				Evidence: map[string]any{
					"importance": p.Importance,
				},
				SuggestedFix: "add a driven_by relation from the character to a motivation node",
				Confidence:   0.75,
			})
		}
	}
	return issues, nil
}

// checkRelationship flags the same ordered character pair carrying two
// social bonds at different creation times whose trust levels differ by 50
// or more: trust should not whiplash without narrative cause.
func (s *ConsistencyService) checkRelationship(ctx context.Context, storyID string) ([]entities.ConsistencyIssue, error) {
	bonds, err := s.graph.RelationsByType(ctx, storyID, entities.RelationSocialBond)
	if err != nil {
		return nil, fmt.Errorf("loading social bonds: %w", err)
	}

	byPair := make(map[string][]entities.Relation)
	for _, b := range bonds {
		key := b.SourceID + "->" + b.TargetID
		byPair[key] = append(byPair[key], b)
	}

	var issues []entities.ConsistencyIssue
	for pair, group := range byPair {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].CreatedAt.Before(group[j].CreatedAt) })

		maxDelta, from, to := 0, group[0], group[0]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].CreatedAt.Equal(group[j].CreatedAt) {
					continue
				}
				delta := group[j].TrustLevel - group[i].TrustLevel
				if delta < 0 {
					delta = -delta
				}
				if delta > maxDelta {
					maxDelta, from, to = delta, group[i], group[j]
				}
			}
		}
		if maxDelta < trustDeltaThreshold {
			continue
		}

		issues = append(issues, entities.ConsistencyIssue{
			ID:       uuid.New().String(),
			Category: entities.IssueRelationship,
			Severity: entities.SeverityMedium,
			Title:    "Abrupt trust change",
			Description: fmt.Sprintf("social bond %s jumps from trust %d to %d (delta %d) between recordings",
				pair, from.TrustLevel, to.TrustLevel, maxDelta),
			AffectedIDs: []string{from.ID, to.ID},
			Evidence: map[string]any{
				"trust_delta": maxDelta,
				"from":        from.TrustLevel,
				"to":          to.TrustLevel,
			},
			SuggestedFix: "add an intermediate plot explaining the trust shift",
			Confidence:   0.70,
		})
	}
	return issues, nil
}

// checkKnowledge flags plots that demand an ability term not lexically
// covered by the involved character's declared strengths.
func (s *ConsistencyService) checkKnowledge(ctx context.Context, storyID string) ([]entities.ConsistencyIssue, error) {
	plots, err := s.graph.PlotNodesByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading plot nodes: %w", err)
	}
	chars, err := s.graph.CharactersByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading characters: %w", err)
	}

	byID := make(map[string]entities.Character, len(chars))
	for _, ch := range chars {
		byID[ch.ID] = ch
	}

	var issues []entities.ConsistencyIssue
	for _, p := range plots {
		desc := strings.ToLower(p.Description)
		if desc == "" {
			continue
		}

		var demanded []string
		for _, term := range abilityTerms {
			if strings.Contains(desc, term) {
				demanded = append(demanded, term)
			}
		}
		if len(demanded) == 0 {
			continue
		}

		for _, cid := range p.CharactersInvolved {
			ch, ok := byID[cid]
			if !ok {
				continue
			}
			var missing []string
			for _, term := range demanded {
				if !coversTerm(ch.Strengths, term) {
					missing = append(missing, term)
				}
			}
			if len(missing) == 0 {
				continue
			}
			issues = append(issues, entities.ConsistencyIssue{
				ID:       uuid.New().String(),
				Category: entities.IssueKnowledge,
				Severity: entities.SeverityMedium,
				Title:    "Undeclared ability used",
				Description: fmt.Sprintf("plot %q requires %s but %s's strengths do not mention it",
					p.Title, strings.Join(missing, ", "), ch.Name),
				AffectedIDs: []string{cid, p.ID},
				Evidence: map[string]any{
					"missing_terms": missing,
					"strengths":     ch.Strengths,
				},
				SuggestedFix: "add the ability to the character's strengths or rewrite the scene",
				Confidence:   0.65,
			})
		}
	}
	return issues, nil
}

// checkWorldRule flags plots whose text touches a world rule without an
// explicit non-violation marker. Strict rules escalate to high severity.
func (s *ConsistencyService) checkWorldRule(ctx context.Context, storyID string) ([]entities.ConsistencyIssue, error) {
	rules, err := s.graph.WorldRulesByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading world rules: %w", err)
	}
	plots, err := s.graph.PlotNodesByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading plot nodes: %w", err)
	}

	var issues []entities.ConsistencyIssue
	for _, rule := range rules {
		terms := ruleTerms(rule)
		if len(terms) == 0 {
			continue
		}

		for _, p := range plots {
			text := strings.ToLower(p.Title + " " + p.Description)

			var hit string
			for _, term := range terms {
				if strings.Contains(text, term) {
					hit = term
					break
				}
			}
			if hit == "" || containsAny(text, nonViolationMarkers) {
				continue
			}

			severity := entities.SeverityMedium
			if rule.Severity == entities.RuleStrict {
				severity = entities.SeverityHigh
			}
			issues = append(issues, entities.ConsistencyIssue{
				ID:       uuid.New().String(),
				Category: entities.IssueWorldRule,
				Severity: severity,
				Title:    "Possible world-rule violation",
				Description: fmt.Sprintf("plot %q touches rule %q (matched %q) with no indication the rule is respected",
					p.Title, rule.Name, hit),
				AffectedIDs: []string{rule.ID, p.ID},
				Evidence: map[string]any{
					"rule_severity": string(rule.Severity),
					"matched_term":  hit,
				},
				SuggestedFix: "state how the scene complies with the rule, or record an exception on the rule",
				Confidence:   0.60,
			})
		}
	}
	return issues, nil
}

// checkPlotCoherence flags sequential (next) plot pairs with no influences
// path of bounded depth between them: consecutive events should be causally
// connected.
func (s *ConsistencyService) checkPlotCoherence(ctx context.Context, storyID string) ([]entities.ConsistencyIssue, error) {
	nexts, err := s.graph.RelationsByType(ctx, storyID, entities.RelationNext)
	if err != nil {
		return nil, fmt.Errorf("loading next relations: %w", err)
	}
	influences, err := s.graph.RelationsByType(ctx, storyID, entities.RelationInfluences)
	if err != nil {
		return nil, fmt.Errorf("loading influences relations: %w", err)
	}

	adjacency := make(map[string][]string)
	for _, r := range influences {
		adjacency[r.SourceID] = append(adjacency[r.SourceID], r.TargetID)
	}

	var issues []entities.ConsistencyIssue
	for _, r := range nexts {
		if hasPath(adjacency, r.SourceID, r.TargetID, influencePathDepth) {
			continue
		}
		issues = append(issues, entities.ConsistencyIssue{
			ID:       uuid.New().String(),
			Category: entities.IssuePlotCoherence,
			Severity: entities.SeverityLow,
			Title:    "Disconnected sequential plots",
			Description: fmt.Sprintf("plots %s and %s are marked sequential but no influences path of depth <= %d connects them",
				r.SourceID, r.TargetID, influencePathDepth),
			AffectedIDs: []string{r.SourceID, r.TargetID},
			Evidence: map[string]any{
				"max_depth": influencePathDepth,
			},
			SuggestedFix: "add an influences relation or an intermediate causal plot",
			Confidence:   0.50,
		})
	}
	return issues, nil
}

// hasPath runs a bounded-depth BFS over the adjacency map.
func hasPath(adjacency map[string][]string, from, to string, maxDepth int) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	frontier := []string{from}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, node := range frontier {
			for _, neighbor := range adjacency[node] {
				if neighbor == to {
					return true
				}
				if !visited[neighbor] {
					visited[neighbor] = true
					next = append(next, neighbor)
				}
			}
		}
		frontier = next
	}
	return false
}

// mentionsDeath reports whether a plot's title or description carries a
// death keyword.
func mentionsDeath(p entities.PlotNode) bool {
	text := strings.ToLower(p.Title + " " + p.Description)
	return containsAny(text, deathKeywords)
}

// ruleTerms derives search terms from a rule: its full name plus the
// significant words of the name.
func ruleTerms(rule entities.WorldRule) []string {
	name := strings.ToLower(strings.TrimSpace(rule.Name))
	if name == "" {
		return nil
	}
	terms := []string{name}
	for _, word := range strings.Fields(name) {
		if len(word) > 3 && word != name {
			terms = append(terms, word)
		}
	}
	return terms
}

// coversTerm reports whether any strength lexically contains the term.
func coversTerm(strengths []string, term string) bool {
	for _, s := range strengths {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func sharedStrings(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	var shared []string
	for _, s := range b {
		if set[s] {
			shared = append(shared, s)
		}
	}
	return shared
}
