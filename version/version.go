package version

// Version is the current release of the vigil CLI/server
const Version = "0.1.0"
