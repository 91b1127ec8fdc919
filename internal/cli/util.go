package cli

import "os"

// osGetenv is the real process environment, used everywhere skillbusctl
// needs the same path-resolution rules dispatch uses (§6 File locations).
var osGetenv = os.Getenv
