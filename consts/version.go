package consts

// Set at link time with -ldflags "-X".
var (
	GitRepo = "unknown"
	GitHash = "dev"
)

func Version() string {
	return GitRepo + "@" + GitHash
}
