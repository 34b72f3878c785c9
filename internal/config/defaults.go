package config

const (
	defaultStagingDir             = "~/.local/share/bookvoice/staging"
	defaultLogDir                 = "~/.local/share/bookvoice/logs"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultRemoteUser             = "converter"
	defaultGitRepo                = "https://github.com/ryantimjohn/ebook2audiobook.git"
	defaultGitBranch              = "main"
	defaultSetupScript            = "setup_remote.sh"
	defaultSetupTimeoutSeconds    = 1800
	defaultTransferConcurrency    = 10
	defaultTransferTimeout        = 900
	defaultTransferRetries        = 2
	defaultConversionTimeout      = 3600
	defaultConversionRetries      = 2
	defaultConversionWorkers      = 10
	defaultMetadataBaseURL        = "https://customsearch.googleapis.com/customsearch/v1"
	defaultMetadataRequestTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Remote: Remote{
			User:                defaultRemoteUser,
			GitRepo:             defaultGitRepo,
			GitBranch:           defaultGitBranch,
			SetupScript:         defaultSetupScript,
			SetupTimeoutSeconds: defaultSetupTimeoutSeconds,
		},
		Transfer: Transfer{
			Concurrency:    defaultTransferConcurrency,
			TimeoutSeconds: defaultTransferTimeout,
			Retries:        defaultTransferRetries,
		},
		Conversion: Conversion{
			TimeoutSeconds: defaultConversionTimeout,
			Retries:        defaultConversionRetries,
			Workers:        defaultConversionWorkers,
		},
		Metadata: Metadata{
			Enabled:        true,
			BaseURL:        defaultMetadataBaseURL,
			RequestTimeout: defaultMetadataRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
