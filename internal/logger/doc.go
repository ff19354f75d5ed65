// Package logger constrói o *zap.Logger do serviço a partir de config.LogConfig.
package logger
