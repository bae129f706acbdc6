package config

const (
	defaultConfigPath      = "~/.config/marquee/config.toml"
	defaultInputPath       = "IMDb Movies India.csv"
	defaultDataDir         = "~/.local/share/marquee"
	defaultLogDir          = "~/.local/share/marquee/logs"
	defaultChartsDir       = "~/.local/share/marquee/charts"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogRetention    = 30
	defaultTestFraction    = 0.2
	defaultEngine          = EngineLightGBM
	defaultSeed            = 42
	defaultNEstimators     = 100
	defaultLearningRate    = 0.1
	defaultMaxDepth        = 3
	defaultMinSamplesSplit = 2
	defaultMinSamplesLeaf  = 1
	defaultTopN            = 10

	// EngineLightGBM and EngineBuiltin are the accepted model.engine values.
	EngineLightGBM = "lightgbm"
	EngineBuiltin  = "builtin"

	// InputEnv overrides paths.input when set.
	InputEnv = "MARQUEE_INPUT"
)

// DefaultFallbackEncodings are tried, in order, after the detected charset.
var DefaultFallbackEncodings = []string{"utf-8", "latin1", "ISO-8859-1"}

// DefaultContentColumns is the span of columns after Name that a row needs at
// least one value in.
var DefaultContentColumns = []string{"Year", "Duration", "Genre", "Rating", "Votes", "Director", "Actor 1", "Actor 2"}

// DefaultSentinelYears holds the partial release year present in the source extract.
var DefaultSentinelYears = []string{"2022"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Input:     defaultInputPath,
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ChartsDir: defaultChartsDir,
		},
		Load: LoadSettings{
			FallbackEncodings: append([]string(nil), DefaultFallbackEncodings...),
		},
		Clean: Clean{
			ContentColumns: append([]string(nil), DefaultContentColumns...),
			SentinelYears:  append([]string(nil), DefaultSentinelYears...),
		},
		Model: Model{
			Engine:          defaultEngine,
			TestFraction:    defaultTestFraction,
			Seed:            defaultSeed,
			NEstimators:     defaultNEstimators,
			LearningRate:    defaultLearningRate,
			MaxDepth:        defaultMaxDepth,
			MinSamplesSplit: defaultMinSamplesSplit,
			MinSamplesLeaf:  defaultMinSamplesLeaf,
		},
		Report: Report{
			TopN:   defaultTopN,
			Charts: false,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
