// Package io provides the devices of the ukernel machine: the Console that
// receives syscall output, and the program image (ROM) codec used to load
// and store instruction streams.
package io
