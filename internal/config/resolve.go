package config

// Store backend defaults.
const (
	DefaultBackend   = "sqlite"
	DefaultRedisAddr = "localhost:6379"
	DefaultLogLevel  = "info"
)

// Store is the resolved storage configuration.
type Store struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Log is the resolved logging configuration.
type Log struct {
	Level string
	Path  string
}

// ResolveStore layers env over file over defaults.
func ResolveStore(file StoreConfig, e EnvConfig) Store {
	s := Store{
		Backend:   DefaultBackend,
		Path:      DefaultDBPath(),
		RedisAddr: DefaultRedisAddr,
	}
	pick(&s.Backend, file.Backend, e.StoreBackend)
	pick(&s.Path, file.Path, e.DBPath)
	pick(&s.RedisAddr, file.RedisAddr, e.RedisAddr)
	pick(&s.RedisPassword, file.RedisPassword, e.RedisPassword)
	if file.RedisDB != nil {
		s.RedisDB = *file.RedisDB
	}
	if e.RedisDB >= 0 {
		s.RedisDB = e.RedisDB
	}
	return s
}

// ResolveLog layers env over file over defaults.
func ResolveLog(file LogConfig, e EnvConfig) Log {
	l := Log{Level: DefaultLogLevel, Path: DefaultLogPath()}
	pick(&l.Level, file.Level, e.LogLevel)
	pick(&l.Path, file.Path, e.LogPath)
	return l
}

// ResolveBank returns the bank path; empty selects the builtin bank.
func ResolveBank(file GameConfig, e EnvConfig) string {
	var path string
	pick(&path, file.Bank, e.Bank)
	return path
}

func pick(target *string, file *string, env string) {
	if file != nil {
		*target = *file
	}
	if env != "" {
		*target = env
	}
}
