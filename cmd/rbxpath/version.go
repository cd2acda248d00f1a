package main

// rbxpathVersion is overridden at release time with
// -ldflags "-X main.rbxpathVersion=<version>".
var rbxpathVersion = "0.1.0"
