package config

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{backend: backend, sqlitePath: sqlitePath}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, uploadDir, bucket string) *Storage {
	return &Storage{backend: backend, uploadDir: uploadDir, bucket: bucket}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(secret string, noAuthn bool) *Auth {
	return &Auth{jwtSecret: secret, noAuthn: noAuthn}
}
