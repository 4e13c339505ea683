package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/common"
	pb "github.com/dmitrijs2005/applylog/internal/proto"
	"golang.org/x/oauth2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const defaultTimeout = 10 * time.Second

// publicMethods are called without a bearer token.
var publicMethods = map[string]bool{
	pb.JobTracker_Ping_FullMethodName:         true,
	pb.JobTracker_Register_FullMethodName:     true,
	pb.JobTracker_Login_FullMethodName:        true,
	pb.JobTracker_RefreshToken_FullMethodName: true,
}

type Option func(*GRPCClient)

// WithTimeout bounds every call, including silent token refreshes.
func WithTimeout(d time.Duration) Option {
	return func(c *GRPCClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTLS(enabled bool) Option {
	return func(c *GRPCClient) { c.useTLS = enabled }
}

// WithTokenListener is called with every new refresh token, so the caller
// can persist the session.
func WithTokenListener(fn func(refreshToken string)) Option {
	return func(c *GRPCClient) { c.onRotate = fn }
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	useTLS      bool
	conn        *grpc.ClientConn
	client      pb.JobTrackerClient
	now         func() time.Time

	mu           sync.Mutex
	refreshToken string
	tokens       oauth2.TokenSource
	onRotate     func(string)
}

func NewGRPCClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: defaultTimeout, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	creds := insecure.NewCredentials()
	if s.useTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(creds),
		grpc.WithChainUnaryInterceptor(s.timeoutInterceptor, s.accessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewJobTrackerClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()
	return invoker(ctx, method, req, reply, cc, opts...)
}

// accessTokenInterceptor attaches a fresh bearer token per call. When the
// server reports an expired token it forces one refresh and retries once.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if publicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	src := s.tokenSource()
	if src == nil {
		return ErrNotLoggedIn
	}
	tok, err := src.Token()
	if err != nil {
		return tokenError(err)
	}

	err = invoker(withAccessToken(ctx, tok.AccessToken), method, req, reply, cc, opts...)
	if !isTokenExpired(err) {
		return err
	}

	src = s.forceRefresh()
	if src == nil {
		return err
	}
	tok, rerr := src.Token()
	if rerr != nil {
		return tokenError(rerr)
	}
	return invoker(withAccessToken(ctx, tok.AccessToken), method, req, reply, cc, opts...)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// tokenError unwraps the oauth2 retrieve wrapper so mapped errors survive.
func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %v", ErrUnauthorized, re)
	}
	return err
}

// refreshSource renews the access token through the RefreshToken RPC.
type refreshSource struct {
	c *GRPCClient
}

func (r refreshSource) Token() (*oauth2.Token, error) {
	refresh := r.c.RefreshToken()
	if refresh == "" {
		return nil, ErrNotLoggedIn
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.c.callTimeout())
	defer cancel()

	resp, err := r.c.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return nil, r.c.mapError(err)
	}
	r.c.rotate(resp.RefreshToken)
	return r.c.oauthToken(resp), nil
}

func (s *GRPCClient) callTimeout() time.Duration {
	if s.timeout <= 0 {
		return defaultTimeout
	}
	return s.timeout
}

func (s *GRPCClient) oauthToken(p *pb.TokenPair) *oauth2.Token {
	t := &oauth2.Token{AccessToken: p.AccessToken, TokenType: "Bearer", RefreshToken: p.RefreshToken}
	if p.ExpiresIn > 0 && s.now != nil {
		t.Expiry = s.now().Add(time.Duration(p.ExpiresIn) * time.Second)
	}
	return t
}

func (s *GRPCClient) tokenSource() oauth2.TokenSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

func (s *GRPCClient) forceRefresh() oauth2.TokenSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshToken == "" {
		return nil
	}
	s.tokens = oauth2.ReuseTokenSource(nil, refreshSource{s})
	return s.tokens
}

func (s *GRPCClient) rotate(refresh string) {
	s.mu.Lock()
	s.refreshToken = refresh
	fn := s.onRotate
	s.mu.Unlock()
	if fn != nil {
		fn(refresh)
	}
}

func (s *GRPCClient) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

func (s *GRPCClient) Resume(refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshToken = refreshToken
	s.tokens = nil
	if refreshToken != "" {
		s.tokens = oauth2.ReuseTokenSource(nil, refreshSource{s})
	}
}

func (s *GRPCClient) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshToken = ""
	s.tokens = nil
}

func (s *GRPCClient) Register(ctx context.Context, username, password string) error {
	_, err := s.client.Register(ctx, &pb.RegisterRequest{Username: username, Password: password})
	return s.mapError(err)
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) error {
	resp, err := s.client.Login(ctx, &pb.LoginRequest{Username: username, Password: password})
	if err != nil {
		return s.mapError(err)
	}

	tok := s.oauthToken(resp)
	s.mu.Lock()
	s.tokens = oauth2.ReuseTokenSource(tok, refreshSource{s})
	s.mu.Unlock()
	s.rotate(resp.RefreshToken)
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) ListJobs(ctx context.Context, q models.Query) (models.Page, error) {
	resp, err := s.client.ListJobs(ctx, queryToPB(q))
	if err != nil {
		return models.Page{}, s.mapError(err)
	}
	page := models.Page{
		Jobs:        make([]models.Job, 0, len(resp.Jobs)),
		CurrentPage: resp.Pagination.CurrentPage,
		TotalPages:  resp.Pagination.TotalPages,
		TotalItems:  resp.Pagination.TotalItems,
	}
	for _, j := range resp.Jobs {
		page.Jobs = append(page.Jobs, jobFromPB(j))
	}
	return page, nil
}

func (s *GRPCClient) CreateJob(ctx context.Context, idempotencyKey string, j models.Job, meta TagMeta) (models.Job, error) {
	statusMeta, platformsMeta := metaToPB(meta)
	resp, err := s.client.CreateJob(ctx, &pb.CreateJobRequest{
		IdempotencyKey: idempotencyKey,
		Job:            jobInputToPB(j),
		StatusMeta:     statusMeta,
		PlatformsMeta:  platformsMeta,
	})
	if err != nil {
		return models.Job{}, s.mapError(err)
	}
	return jobFromPB(resp.Job), nil
}

func (s *GRPCClient) UpdateJob(ctx context.Context, id string, diff models.JobDiff, meta TagMeta) (models.Job, error) {
	statusMeta, platformsMeta := metaToPB(meta)
	resp, err := s.client.UpdateJob(ctx, &pb.UpdateJobRequest{
		ID:            id,
		Patch:         diffToPB(diff),
		StatusMeta:    statusMeta,
		PlatformsMeta: platformsMeta,
	})
	if err != nil {
		return models.Job{}, s.mapError(err)
	}
	return jobFromPB(resp.Job), nil
}

func (s *GRPCClient) DeleteJob(ctx context.Context, id string) error {
	_, err := s.client.DeleteJob(ctx, &pb.DeleteJobRequest{ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) ListDefaultTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error) {
	resp, err := s.client.ListDefaultTags(ctx, &pb.ListTagsRequest{Kind: string(kind)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return tagsFromPB(resp.Tags, true), nil
}

func (s *GRPCClient) ListCustomTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error) {
	resp, err := s.client.ListCustomTags(ctx, &pb.ListTagsRequest{Kind: string(kind)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return tagsFromPB(resp.Tags, false), nil
}

func (s *GRPCClient) CreateTag(ctx context.Context, kind models.TagKind, key, name string) (models.Tag, error) {
	resp, err := s.client.CreateTag(ctx, &pb.CreateTagRequest{Kind: string(kind), Key: key, Name: name})
	if err != nil {
		return models.Tag{}, s.mapError(err)
	}
	return models.Tag{Key: resp.Tag.Key, Name: resp.Tag.Name}, nil
}

func (s *GRPCClient) DeleteTag(ctx context.Context, kind models.TagKind, key string) error {
	_, err := s.client.DeleteTag(ctx, &pb.DeleteTagRequest{Kind: string(kind), Key: key})
	return s.mapError(err)
}

func (s *GRPCClient) GetStats(ctx context.Context) (models.Stats, error) {
	resp, err := s.client.GetStats(ctx, &pb.GetStatsRequest{})
	if err != nil {
		return models.Stats{}, s.mapError(err)
	}
	return statsFromPB(resp), nil
}

func (s *GRPCClient) ExportJobs(ctx context.Context, format string) (Export, error) {
	resp, err := s.client.ExportJobs(ctx, &pb.ExportJobsRequest{Format: format})
	if err != nil {
		return Export{}, s.mapError(err)
	}
	exp := Export{FileName: resp.FileName, ContentType: resp.ContentType, URL: resp.URL}
	exp.ExpiresAt, _ = time.Parse(time.RFC3339, resp.ExpiresAt)
	return exp, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	var rejected *RejectedError
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrNotFound) || errors.As(err, &rejected) {
		return err
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists, codes.OutOfRange:
		return &RejectedError{Code: st.Code(), Message: st.Message()}
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	default:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	}
}
