package services

// extractionPrompt instructs the model to emit one JSON object with seven
// arrays. Every item carries a confidence float; missing confidences default
// to 0.5 during parsing.
const extractionPrompt = `You are an entity extraction engine for fictional narratives. Extract every entity, plot event, and relationship from the given text chunk.

Return ONLY a single JSON object with exactly these keys (all arrays, empty if nothing found):

"characters"  : [{"name": string, "description": string, "status": "alive"|"deceased"|"missing"|"unknown", "traits": [string], "strengths": [string], "motivations": [string], "confidence": number}]
"locations"   : [{"name": string, "description": string, "confidence": number}]
"conflicts"   : [{"name": string, "description": string, "confidence": number}]
"motivations" : [{"name": string, "description": string, "confidence": number}]
"themes"      : [{"name": string, "description": string, "confidence": number}]
"plot_nodes"  : [{"title": string, "description": string, "sequence_number": number, "importance": number, "tension": number, "characters": [string], "locations": [string], "conflicts": [string], "themes": [string], "confidence": number}]
"relations"   : [{"source": string, "target": string, "type": string, "description": string, "confidence": number}]

Rules:
- confidence is a float between 0.0 and 1.0 indicating how certain you are.
- importance and tension are integers between 0 and 100.
- sequence_number orders plot events in narrative time.
- relation type must be one of: social_bond, family, romantic, influences, leads_to, next, resolves, complicates, involved_in, driven_by, contains, violates, enforces, located_in, owns, part_of, represents, opposes, supports.
- source and target of a relation must be names that appear in the arrays above.
- Only include what is clearly supported by the text.
- Do NOT include any text outside the JSON object.`

// validationPrompt instructs the model to reconcile the full merged
// candidate set in a single pass.
const validationPrompt = `You are a validation engine for a narrative knowledge graph. You are given the full set of candidate entities, plot events, and relations merged from all text chunks of one story.

Your tasks:
1. Merge duplicate or synonymous entities (same character under different spellings, etc.), keeping the best description.
2. For each relation, verify that source and target both appear in the final entity name set. If either is missing, keep the relation but set "invalid": true.
3. Normalize each relation "type" to one of: social_bond, family, romantic, influences, leads_to, next, resolves, complicates, involved_in, driven_by, contains, violates, enforces, located_in, owns, part_of, represents, opposes, supports.
4. Re-score "confidence" for every item and attach a short "reason" explaining the score.

Return ONLY a single JSON object with the same shape as the input: keys "entities", "plot_nodes", "relations". Each entity keeps its "type" field. Do NOT include any text outside the JSON object.

Candidates:
%s`
