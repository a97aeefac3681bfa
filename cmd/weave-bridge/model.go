// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tickMsg drives periodic re-reads of bridge state; the bridge's
// managers run their sync loops on their own goroutines, so the TUI
// only needs to poll and render, never drive the protocol itself.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// model is a minimal live view of a bridge's two nodes: their
// knownState for the demo covalue and whether they've converged,
// modeled on cmd/bureau-viewer's single-screen status display but
// with no input handling beyond quitting.
type model struct {
	bridge *bridge

	converged    bool
	summary      string
	sinceStarted time.Time
}

func newModel(b *bridge) model {
	return model{bridge: b, sinceStarted: time.Now()}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.converged = m.bridge.converged()
		m.summary = m.bridge.summary()
		return m, tick()
	}
	return m, nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("weave-bridge") + "\n")
	b.WriteString(fmt.Sprintf("elapsed: %s\n\n", time.Since(m.sinceStarted).Round(100*time.Millisecond)))

	if m.converged {
		b.WriteString(okStyle.Render("converged") + "\n\n")
	} else {
		b.WriteString(pendingStyle.Render("syncing...") + "\n\n")
	}

	if m.summary != "" {
		b.WriteString(m.summary + "\n\n")
	}

	b.WriteString(helpStyle.Render("press q to quit"))
	return b.String()
}
