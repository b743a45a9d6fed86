// Package cli provides the terminal user interface components for starcards.
//
// The package uses [Bubbletea] for building interactive terminal UIs and
// [Lipgloss] for styling. All UI components follow the standard Bubbletea
// Model-View-Update (MVU) architecture.
//
// # Components
//
//   - Browse: entity cards with detail and favorites panes, driven by the
//     application store
//   - PrintEntities: non-interactive rendering used by the list command
//
// # Store updates
//
// Views never mutate entities directly. Key presses call store actions and
// the view re-reads a snapshot when the store notifies a change. The
// notification is forwarded through a channel that a tea.Cmd waits on, so
// the store never blocks on the terminal.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
