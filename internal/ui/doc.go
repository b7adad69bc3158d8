// Package ui holds the terminal pieces that sit beside the menu engine: the lipgloss
// [Palette], line prompts and the yes/no [Confirm] prompt.
//
// Two [Prompter] implementations exist. [TextPrompt] runs a bubbletea program around a
// bubbles textinput and is used on a real terminal; [LinePrompt] assembles a line from
// [menu.KeyReader] events so piped input and tests share the menu's key stream.
//
// Every prompt reports Ctrl-C as [menu.ErrInterrupted] and Esc as [ErrCancelled].
package ui
