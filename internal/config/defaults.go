package config

const (
	defaultBaseDir         = "."
	defaultArchive         = "data.zip"
	defaultDataDir         = "data"
	defaultOutputDir       = "output"
	defaultStateDir        = ".dataprep"
	defaultColabSubdir     = "cnn_leucemia"
	defaultTrainRatio      = 0.7
	defaultValRatio        = 0.15
	defaultTestRatio       = 0.15
	defaultSeed            = 42
	defaultClassA          = "class_a"
	defaultClassB          = "class_b"
	defaultClassASuffix    = "0.jpg"
	defaultNestedDir       = "data"
	defaultThreshold       = 125
	defaultMaxValue        = 300
	defaultCropTop         = 30
	defaultCropLeft        = 30
	defaultJPEGQuality     = 95
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	ratioSumTolerance      = 1e-6
	maxPreprocessThreshold = 255
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BaseDir:   defaultBaseDir,
			Archive:   defaultArchive,
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Environments: Environments{
			ColabSubdir: defaultColabSubdir,
		},
		Split: Split{
			TrainRatio: defaultTrainRatio,
			ValRatio:   defaultValRatio,
			TestRatio:  defaultTestRatio,
			Seed:       defaultSeed,
		},
		Classes: Classes{
			ClassA:       defaultClassA,
			ClassB:       defaultClassB,
			ClassASuffix: defaultClassASuffix,
		},
		Layout: Layout{
			NestedDir: defaultNestedDir,
		},
		Preprocess: Preprocess{
			Threshold:   defaultThreshold,
			MaxValue:    defaultMaxValue,
			CropTop:     defaultCropTop,
			CropLeft:    defaultCropLeft,
			JPEGQuality: defaultJPEGQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
