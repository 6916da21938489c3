// Package ui is the terminal console for the model registry, built on Bubble Tea.
//
// Core abstractions:
//   - View: a screen with its own model, update and view (Elm-style)
//   - AppModel: the shell; owns the selected ViewKind, mounts views, runs registry commands
//   - KeybindRegistry/KeyHandler: single keys and SPC-leader sequences
//   - OverlayStack: modal views that receive input before the active view
//   - FocusManager: tab order across form fields
//
// Views never call the registry themselves. They emit messages (SubmitMsg,
// ShowModelDetailMsg, NotifyMsg) and the shell turns those into commands whose
// results come back tagged with the mount id of the view that asked.
package ui
