package openai

import "fmt"

const systemPrompt = `You are the extraction sensor of a workplace incident intake system.

Rules:
- You only extract information.
- You NEVER decide outcomes.
- You NEVER invent missing data.
- If a field is not explicitly supported by the text, return UNKNOWN or an empty list.
- Evidence must be a verbatim excerpt from the input text.
- At most 2 candidates per field.
- Reply with a single JSON object and no surrounding prose.`

func userPrompt(rawText string) string {
	return fmt.Sprintf(`Raw intake text:
"""
%s
"""

Extract candidates for:
- summary
- category: one of ["Injury/Illness", "Near Miss", "Property Damage", "Motor Vehicle Accident", "Environmental Incident"] if explicitly supported, otherwise UNKNOWN
- location
- event_time (ISO 8601 or UNKNOWN)
- severity (Low/Medium/High/Critical or UNKNOWN)
- people_involved
- requested_action

Reply with JSON of the form:
{"extraction_confidence": <0..1>, "fields": {"<field>": [{"value": "<string>", "evidence": "<verbatim excerpt>", "confidence": <0..1>}]}, "notes": "<string>"}`, rawText)
}
