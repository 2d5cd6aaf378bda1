// Package app contains the core application logic: it builds the problem a
// build file asks for, writes the export artifacts and optionally solves
// it, decoupled from any specific entrypoint like a CLI or server.
package app
