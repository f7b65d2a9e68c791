package e2e

import (
	"context"
	"fmt"
	"safe-space/client"
	"safe-space/domain"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const e2ePassword = "E2e!Passphrase99"

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment and skips when no server is configured.
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerURL == "" {
		s.T().Skip("E2E_SERVER_URL is not set")
	}
}

func (s *BaseSuite) header(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// GrpcConn opens a connection that logs every unary call.
func (s *BaseSuite) GrpcConn(name string) *grpc.ClientConn {
	s.header(name)
	marshaler := protojson.MarshalOptions{UseProtoNames: true, Multiline: true, EmitUnpopulated: true}

	conn, err := grpc.NewClient(s.Config.GRPCAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))
			if s.Config.DebugJSON && err == nil {
				fmt.Fprintln(&logBuilder, "\nRESPONSE:")
				fmt.Fprintln(&logBuilder, marshaler.Format(reply.(proto.Message)))
			}
			s.T().Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.GRPCAddr)
	return conn
}

// NewUser registers a fresh account and returns a client signed in as it.
func (s *BaseSuite) NewUser(name string, role domain.Role) (*client.HTTPClient, client.Session) {
	s.header("Register " + name)
	api := client.NewHTTPClient(s.Config.ServerURL, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := fmt.Sprintf("%s-%s@e2e.test", strings.ToLower(strings.Fields(name)[0]), uuid.NewString()[:8])
	session, err := api.Register(ctx, name, email, e2ePassword, role)
	s.Require().NoError(err)
	return api, session
}
