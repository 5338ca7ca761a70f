// Package ipc exposes a running player over JSON-RPC on a Unix socket and
// ships the matching client used by `vibeshuffle ctl`.
//
// Every RPC is translated into a player.Command and submitted to the
// controller, so remote actions are serialized with keyboard input and the
// end-of-track poller. Desktop hotkeys bind to ctl invocations; each action
// maps 1:1 onto a session action.
package ipc
