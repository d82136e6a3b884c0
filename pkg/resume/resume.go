// Package resume normalizes the backend's resume-analysis payload. The
// backend emits the same concept under either snake_case or camelCase keys
// depending on the model's mood, so every field is read through a dual-key
// accessor here, once, instead of scattering fallback reads across consumers.
package resume

import (
	"ragdesk/internal/models"
)

// Normalize maps a raw analysis payload into the canonical struct, filling
// defaults for missing sections and clamping scores to [0,100].
func Normalize(raw map[string]interface{}) *models.ResumeAnalysis {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	a := &models.ResumeAnalysis{
		OverallScore:    clamp(pickInt(raw, 50, "overall_score", "overallScore")),
		Summary:         pickString(raw, "Analysis completed", "analysis_summary", "analysisSummary"),
		MatchedSkills:   matchedSkills(pickSlice(raw, "matched_skills", "matchedSkills")),
		MissingSkills:   missingSkills(pickSlice(raw, "missing_skills", "missingSkills")),
		Strengths:       stringItems(pickSlice(raw, "strengths"), "strength"),
		Weaknesses:      stringItems(pickSlice(raw, "weaknesses"), "weakness"),
		Recommendations: stringItems(pickSlice(raw, "recommendations"), "recommendation"),
	}

	ats := pickMap(raw, "ats_score", "atsScore")
	a.ATS = models.ATSScore{
		KeywordMatch: clamp(pickInt(ats, 50, "keyword_match", "keywordMatch")),
		FormatScore:  clamp(pickInt(ats, 70, "format_score", "formatScore")),
		Readability:  clamp(pickInt(ats, 80, "readability")),
	}

	return a
}

func matchedSkills(items []interface{}) []models.SkillMatch {
	var out []models.SkillMatch
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := pickString(m, "", "skill", "name")
		if name == "" {
			continue
		}
		out = append(out, models.SkillMatch{
			Skill:      name,
			Confidence: clamp(pickInt(m, 0, "confidence")),
		})
	}
	return out
}

func missingSkills(items []interface{}) []models.SkillGap {
	var out []models.SkillGap
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := pickString(m, "", "skill", "name")
		if name == "" {
			continue
		}
		out = append(out, models.SkillGap{
			Skill:      name,
			Importance: pickString(m, "medium", "importance"),
		})
	}
	return out
}

// stringItems accepts either plain strings or single-field objects like
// {"strength": "..."} and flattens them to strings.
func stringItems(items []interface{}, field string) []string {
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				out = append(out, v)
			}
		case map[string]interface{}:
			if s := pickString(v, "", field, "text"); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func pick(m map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickString(m map[string]interface{}, fallback string, keys ...string) string {
	v, ok := pick(m, keys...)
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

func pickInt(m map[string]interface{}, fallback int, keys ...string) int {
	v, ok := pick(m, keys...)
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

func pickSlice(m map[string]interface{}, keys ...string) []interface{} {
	v, ok := pick(m, keys...)
	if !ok {
		return nil
	}
	s, _ := v.([]interface{})
	return s
}

func pickMap(m map[string]interface{}, keys ...string) map[string]interface{} {
	v, ok := pick(m, keys...)
	if !ok {
		return map[string]interface{}{}
	}
	sub, ok := v.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return sub
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
