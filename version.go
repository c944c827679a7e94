package labelshark

// BinaryGitHash is the Git hash of the labelshark binary file which is executing.
// It is set by the linker: -ldflags "-X github.com/cyraxred/labelshark.BinaryGitHash=<hash>".
var BinaryGitHash = "<unknown>"

// BinaryVersion is the release of labelshark.
var BinaryVersion = "2.0.0"
