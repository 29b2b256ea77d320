// Package ipc provides the local byte-stream channel used by the snapshot
// protocol: a Unix domain socket on Unix-like systems and a named pipe on
// Windows.
//
// The package only moves bytes. It knows nothing about snapshots; framing and
// sizes belong to the server and client on either side. Listen guards the
// endpoint so only one server process can own an address at a time.
package ipc
