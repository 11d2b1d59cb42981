// ABOUTME: Tests for the wizard command host model
// ABOUTME: Verifies completion and cancellation handling

package cmd

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/sparkcalc/sparkcalc/backend/models"
	"github.com/sparkcalc/sparkcalc/cli/internal/tui/wizard"
)

func TestWizardModel_Complete(t *testing.T) {
	m := &wizardModel{wizard: wizard.New(nil)}
	input := &models.CableDeratingInput{BaseRatingAmps: 27}

	_, cmd := m.Update(wizard.WizardCompleteMsg{Input: input})

	assert.NotNil(t, cmd)
	assert.Same(t, input, m.input)
	assert.False(t, m.cancelled)
	assert.Empty(t, m.View())
}

func TestWizardModel_Cancelled(t *testing.T) {
	m := &wizardModel{wizard: wizard.New(nil)}

	_, cmd := m.Update(wizard.WizardCancelledMsg{})

	assert.NotNil(t, cmd)
	assert.True(t, m.cancelled)
	assert.Nil(t, m.input)
}

func TestWizardModel_CtrlC(t *testing.T) {
	m := &wizardModel{wizard: wizard.New(nil)}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, m.cancelled)
}

func TestWizardModel_ViewWhileRunning(t *testing.T) {
	m := &wizardModel{wizard: wizard.New(nil)}
	m.Init()

	assert.Contains(t, m.View(), "Progress")
}
