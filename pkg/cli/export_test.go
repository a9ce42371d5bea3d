package cli

// RunWithWriter runs the command line printing command results to a given writer
var RunWithWriter = run
