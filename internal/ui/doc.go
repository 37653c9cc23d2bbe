// Package ui implements the operator checkpoint using bubbletea's Elm architecture.
//
// A [Prompt] presents the checkpoint message and three buttons (Stop, Continue, Skip) with
// Continue preselected. [PromptDecider] runs one prompt per checkpoint; [AutoDecider] answers
// without asking for unattended runs. Any failure to obtain an answer is reported as Stop.
//
// Keyboard navigation uses vim-style bindings (h/l, enter, c/s/q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
