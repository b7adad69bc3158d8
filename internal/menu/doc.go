// Package menu implements the terminal navigation engine: a titled list of entries navigated
// one keypress at a time, each entry optionally bound to an [Action].
//
// # Loop
//
// [Menu.Run] clears the screen, renders a frame, blocks for exactly one key from its [KeyReader]
// and dispatches it. Up/down skip disabled entries and wrap, enter/space/right run the entry under
// the cursor, a digit jumps to and runs that entry, q or end-of-input stop the loop.
//
// Menus compose by call stack: an action may build and run a child menu, and the parent blocks
// until the child's Run returns.
//
// # Failures
//
// An action's error is reported inline on the next frame and the loop continues. The one
// exception is [ErrInterrupted] (Ctrl-C in raw mode, or a cancelled context), which propagates
// out of every nested Run so a single confirmation point at the top of the program can handle it.
//
// # Input
//
// [TerminalReader] switches the terminal into raw mode for the duration of each read and restores
// it on every exit path. [StreamReader] decodes a plain byte stream (pipes, tests). Both decode
// ANSI escape sequences and Windows console extended-key prefixes into the same [KeyEvent] set,
// so the dispatch logic never branches on platform.
package menu
