package config

import "go.uber.org/zap"

var Log *zap.SugaredLogger

func InitLogger() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	Log = logger.Sugar()
	return nil
}

func init() {
	// Tests and helpers may touch Log before main runs InitLogger.
	Log = zap.NewNop().Sugar()
}
