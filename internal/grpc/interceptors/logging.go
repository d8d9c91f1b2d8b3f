package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"jobscout/internal/logging"
	"jobscout/pkg/utils"
)

// RequestIDKey is the metadata key carrying a caller-supplied request id
const RequestIDKey = "x-request-id"

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDKey); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return utils.GenerateRequestID()
}

func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Internal
}

// LoggingInterceptor logs every unary call with its duration and status code
func LoggingInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		startTime := time.Now()
		id := requestID(ctx)
		ctx = logging.ContextWithFields(ctx, map[string]interface{}{"request_id": id})
		resp, err := handler(ctx, req)

		fields := map[string]interface{}{
			"request_id":      id,
			"method":          info.FullMethod,
			"processing_time": utils.FormatDuration(time.Since(startTime)),
			"status_code":     codeOf(err).String(),
		}
		if err != nil {
			logger.WithError(err).Error("gRPC request failed", fields)
		} else {
			logger.Debug("gRPC request completed", fields)
		}
		return resp, err
	}
}

// StreamLoggingInterceptor logs every stream when it ends. Health Watch
// streams are long lived, so only their end is logged.
func StreamLoggingInterceptor(logger logging.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		startTime := time.Now()
		err := handler(srv, ss)

		fields := map[string]interface{}{
			"request_id":      requestID(ss.Context()),
			"method":          info.FullMethod,
			"processing_time": utils.FormatDuration(time.Since(startTime)),
			"status_code":     codeOf(err).String(),
		}
		if err != nil && codeOf(err) != codes.Canceled {
			logger.WithError(err).Error("gRPC stream failed", fields)
		} else {
			logger.Debug("gRPC stream completed", fields)
		}
		return err
	}
}
