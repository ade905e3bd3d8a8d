package config

const (
	// DefaultConfigFile is the config file looked up in the working directory
	DefaultConfigFile = "iltransform.yaml"
	// DefaultTestPath is the default test tree root
	DefaultTestPath = "."
	// DefaultOutputJSONFile is the default snapshot file name
	DefaultOutputJSONFile = "iltransform-snapshot.json"
	// DefaultOutputJSONDir is the default snapshot directory
	DefaultOutputJSONDir = ".iltransform"
	// DefaultProcessors is the default number of analysis workers
	DefaultProcessors = 4
	// DefaultContentCacheSize bounds the source files kept for content comparison
	DefaultContentCacheSize = 4096
	// EnvPrefix prefixes environment overrides, e.g. ILTRANSFORM_PROCESSORS
	EnvPrefix = "ILTRANSFORM"
)

// DefaultPathsToIgnore are the directories skipped when scanning for descriptors
var DefaultPathsToIgnore = []string{
	"bin",
	"obj",
	"artifacts",
	"node_modules",
}

// DefaultKnownCommonNames are type names so common across the test tree that
// they are always deduplicated, even without a detected collision
var DefaultKnownCommonNames = []string{
	"App",
	"Class1",
	"MainApp",
	"Program",
	"Test",
	"TestClass",
	"Tests",
}
