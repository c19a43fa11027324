package wizard

import "formdesk/internal/form"

// StepView describes one step.
type StepView struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FieldView is the render metadata of one field on the active step.
type FieldView struct {
	Key      string         `json:"key"`
	Label    string         `json:"label"`
	Type     form.FieldType `json:"type"`
	Required bool           `json:"required"`
	Options  []string       `json:"options,omitempty"`
	Multiple bool           `json:"multiple,omitempty"`
}

// UploadView is the upload state of one file field.
type UploadView struct {
	URL          string `json:"url,omitempty"`
	OriginalName string `json:"original_name,omitempty"`
	Progress     int    `json:"progress"`
	Uploading    bool   `json:"uploading"`
}

// View is a read-only rendering of a session.
type View struct {
	SessionID  string                `json:"session_id"`
	ClientID   string                `json:"client_id"`
	FormType   string                `json:"form_type"`
	Title      string                `json:"title"`
	Step       StepView              `json:"step"`
	Steps      []StepView            `json:"steps"`
	TotalSteps int                   `json:"total_steps"`
	Progress   int                   `json:"progress"`
	IsFirst    bool                  `json:"is_first"`
	IsLast     bool                  `json:"is_last"`
	Fields     []FieldView           `json:"fields"`
	Values     form.Values           `json:"values"`
	Errors     map[string]string     `json:"errors"`
	Uploads    map[string]UploadView `json:"uploads"`
	Notices    []Notice              `json:"notices"`
	Submitting bool                  `json:"submitting"`
}

// View renders the session and drains its pending notices.
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.def.Steps)
	active := s.def.Steps[s.step]
	v := &View{
		SessionID:  s.ID,
		ClientID:   s.ClientID,
		FormType:   s.def.Type,
		Title:      s.def.Title,
		Step:       StepView{Index: s.step, ID: active.ID, Title: active.Title},
		TotalSteps: total,
		Progress:   (s.step + 1) * 100 / total,
		IsFirst:    s.step == 0,
		IsLast:     s.step == total-1,
		Values:     s.values.Clone(),
		Errors:     map[string]string{},
		Uploads:    map[string]UploadView{},
		Notices:    s.notices.Drain(),
		Submitting: s.orchestrator.InFlight(),
	}
	for i, st := range s.def.Steps {
		v.Steps = append(v.Steps, StepView{Index: i, ID: st.ID, Title: st.Title})
	}

	merged := s.merged()
	for _, key := range active.FieldKeys {
		rule, _ := s.def.Schema.Rule(key)
		v.Fields = append(v.Fields, FieldView{
			Key:      rule.Key,
			Label:    rule.Label,
			Type:     rule.Type,
			Required: form.IsRequired(rule, merged),
			Options:  rule.Options,
			Multiple: rule.Multiple,
		})
	}
	for k, msg := range s.errs {
		if msg != "" && (s.touched[k] || s.revealed[k]) {
			v.Errors[k] = msg
		}
	}
	for _, key := range s.def.Schema.FileKeys() {
		up, done := s.uploads[key]
		pct, started := s.progress[key]
		if !done && !started {
			continue
		}
		if done && !started {
			pct = 100
		}
		v.Uploads[key] = UploadView{
			URL:          up.URL,
			OriginalName: up.OriginalName,
			Progress:     pct,
			Uploading:    s.uploading[key],
		}
	}
	return v
}
