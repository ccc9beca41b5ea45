package lib

// Version is overridden at build time with -ldflags "-X .../internal/lib.Version=...".
var Version = "dev"
