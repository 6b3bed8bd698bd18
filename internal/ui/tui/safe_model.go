package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmetuna/padhneyAI/internal/domain"
)

const panicToast = "Unexpected error (see logs)"

// safeModel keeps a panic in the form from killing the terminal session.
type safeModel struct {
	m   model
	log *slog.Logger
}

func wrapSafe(m model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) Init() tea.Cmd {
	return s.m.Init()
}

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tui.panic_recovered",
				"where", "update",
				"msg_type", fmt.Sprintf("%T", msg),
				"state", s.m.state,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)

			s.m = s.m.recovered()
			tm = s
			cmd = nil
		}
	}()

	inner, c := s.m.Update(msg)

	if mm, ok := inner.(model); ok {
		s.m = mm
	} else if sm, ok := inner.(safeModel); ok {
		s = sm
	}

	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tui.panic_recovered",
				"where", "view",
				"state", s.m.state,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			out = panicToast
		}
	}()
	return s.m.View()
}

// recovered puts the form back into an editable state after a panic. A
// submission left in submitting would otherwise keep the button disabled.
func (m model) recovered() model {
	if m.state == domain.StateSubmitting {
		m.state = domain.StateIdle
		m.result = domain.RegistrationResult{}
	}
	m.fieldErrs = map[string]string{}
	m.toast = panicToast
	return m
}

var _ tea.Model = (*safeModel)(nil)
