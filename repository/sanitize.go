package repository

import (
	"encoding/json"
	"strconv"
	"strings"

	"execpanel/model"
)

// Sanitize rebuilds a well-typed document from whatever was persisted.
// It starts from the defaults and coerces the raw input field by
// field, so documents written by any earlier schema load cleanly. It
// never fails: garbage in, defaults out.
func Sanitize(payload []byte) *model.Document {
	out := model.DefaultDocument()

	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil || raw == nil {
		return out
	}

	out.Stats = model.Stats{
		Points: coerceInt(dig(raw, "stats", "points"), out.Stats.Points),
		Streak: coerceInt(dig(raw, "stats", "streak"), out.Stats.Streak),
	}

	out.Settings = model.Settings{
		DefaultEstimateMin: coerceInt(dig(raw, "settings", "defaultEstimateMin"), out.Settings.DefaultEstimateMin),
		CompletePoints:     coerceInt(dig(raw, "settings", "completePoints"), out.Settings.CompletePoints),
		FailPoints:         coerceInt(dig(raw, "settings", "failPoints"), out.Settings.FailPoints),
		StreakResetOnFail:  coerceBool(dig(raw, "settings", "streakResetOnFail"), out.Settings.StreakResetOnFail),
	}

	out.Sops = sanitizeSops(raw["sops"])
	out.Tasks = sanitizeTasks(raw["tasks"], out.Settings.DefaultEstimateMin)
	out.Sessions = sanitizeSessions(raw["sessions"])

	out.LastTaskOrder = coerceInt(raw["lastTaskOrder"], out.LastTaskOrder)
	if s, ok := raw["updatedAt"].(string); ok {
		out.UpdatedAt = s
	}
	out.SchemaVersion = model.SchemaVersion

	return out
}

// sanitizeSops keeps only string keys mapping to arrays of non-empty
// strings; entries of any other shape are dropped.
func sanitizeSops(raw interface{}) map[string][]string {
	out := map[string][]string{}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return out
	}
	for key, v := range m {
		if key == "" {
			continue
		}
		list, ok := v.([]interface{})
		if !ok {
			continue
		}
		out[key] = stringList(list)
	}
	return out
}

func sanitizeTasks(raw interface{}, defaultEstimate int) []model.Task {
	out := []model.Task{}
	list, ok := raw.([]interface{})
	if !ok {
		return out
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		task := model.Task{
			ID:                coerceString(m["id"], ""),
			Title:             strings.TrimSpace(coerceString(m["title"], "")),
			Type:              sanitizeTaskType(m["type"]),
			EstimateMin:       coerceInt(m["estimateMin"], defaultEstimate),
			Importance:        sanitizeImportance(m["importance"]),
			Links:             sanitizeLinks(m),
			DefinitionOfDone:  trimmedString(m["definitionOfDone"]),
			LastPracticeFocus: trimmedString(m["lastPracticeFocus"]),
			SopKey:            trimmedString(m["sopKey"]),
			Notes:             sanitizeNotes(m["notes"]),
			NoteDraft:         coerceString(m["noteDraft"], ""),
			Status:            sanitizeStatus(m["status"]),
			Order:             coerceInt(m["order"], 0),
			CreatedAt:         isoOrNow(m["createdAt"]),
			UpdatedAt:         isoOrNow(m["updatedAt"]),
			LastSkippedAt:     coerceString(m["lastSkippedAt"], ""),
		}
		if !task.Valid() {
			continue
		}
		out = append(out, task)
	}
	return out
}

// sanitizeLinks normalizes the link list across schema generations:
// v2 stores `links`, v1 stored `urls`, v0 stored a singular `url`.
func sanitizeLinks(m map[string]interface{}) []string {
	if list, ok := m["links"].([]interface{}); ok {
		return stringList(list)
	}
	if list, ok := m["urls"].([]interface{}); ok {
		return stringList(list)
	}
	if u, ok := m["url"].(string); ok {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			return []string{trimmed}
		}
	}
	return []string{}
}

func sanitizeNotes(raw interface{}) []model.TaskNote {
	out := []model.TaskNote{}
	list, ok := raw.([]interface{})
	if !ok {
		return out
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		note := model.TaskNote{
			ID:        coerceString(m["id"], ""),
			Text:      strings.TrimSpace(coerceString(m["text"], "")),
			CreatedAt: isoOrNow(m["createdAt"]),
		}
		if note.ID == "" || note.Text == "" {
			continue
		}
		out = append(out, note)
	}
	return out
}

// sanitizeSessions drops malformed history records rather than
// repairing them: a record without id, taskId and a definite result
// carries no usable outcome.
func sanitizeSessions(raw interface{}) []model.PracticeSession {
	out := []model.PracticeSession{}
	list, ok := raw.([]interface{})
	if !ok {
		return out
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		rec := model.PracticeSession{
			ID:            coerceString(m["id"], ""),
			TaskID:        coerceString(m["taskId"], ""),
			SopKey:        trimmedString(m["sopKey"]),
			TaskType:      sanitizeTaskType(m["taskType"]),
			StartedAt:     coerceString(m["startedAt"], ""),
			EndedAt:       coerceString(m["endedAt"], ""),
			PlannedMin:    coerceInt(m["plannedMin"], 0),
			ActualSec:     coerceInt(m["actualSec"], 0),
			Result:        sanitizeResult(m["result"]),
			PracticeFocus: trimmedString(m["practiceFocus"]),
			FailReason:    model.FailReason(coerceString(m["failReason"], "")),
			FailTrigger:   model.FailTrigger(coerceString(m["failTrigger"], "")),
			SelfCompare:   model.SelfCompare(coerceString(m["selfCompare"], "")),
		}
		if rec.ID == "" || rec.TaskID == "" || rec.Result == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func sanitizeTaskType(v interface{}) model.TaskType {
	switch model.TaskType(coerceString(v, "")) {
	case model.TaskTypeRepeat:
		return model.TaskTypeRepeat
	case model.TaskTypeLight:
		return model.TaskTypeLight
	default:
		return model.TaskTypeDeep
	}
}

func sanitizeImportance(v interface{}) model.Importance {
	if model.Importance(coerceString(v, "")) == model.ImportanceUrgent {
		return model.ImportanceUrgent
	}
	return model.ImportanceNormal
}

func sanitizeStatus(v interface{}) model.TaskStatus {
	if model.TaskStatus(coerceString(v, "")) == model.StatusDone {
		return model.StatusDone
	}
	return model.StatusTodo
}

func sanitizeResult(v interface{}) model.SessionResult {
	switch model.SessionResult(coerceString(v, "")) {
	case model.ResultSuccess:
		return model.ResultSuccess
	case model.ResultFail:
		return model.ResultFail
	default:
		return ""
	}
}

// stringList keeps string entries only, trimmed, empties dropped.
func stringList(list []interface{}) []string {
	out := []string{}
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func coerceInt(v interface{}, fallback int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return fallback
}

func coerceBool(v interface{}, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

func coerceString(v interface{}, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func trimmedString(v interface{}) string {
	return strings.TrimSpace(coerceString(v, ""))
}

func isoOrNow(v interface{}) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return model.NowISO()
}

// dig walks nested objects; returns nil when any hop is missing.
func dig(m map[string]interface{}, path ...string) interface{} {
	var cur interface{} = m
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}
