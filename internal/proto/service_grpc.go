package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "applylog.v1.JobTracker"

// Full method names, also used by interceptors to allowlist public calls.
const (
	JobTracker_Ping_FullMethodName            = "/" + ServiceName + "/Ping"
	JobTracker_Register_FullMethodName        = "/" + ServiceName + "/Register"
	JobTracker_Login_FullMethodName           = "/" + ServiceName + "/Login"
	JobTracker_RefreshToken_FullMethodName    = "/" + ServiceName + "/RefreshToken"
	JobTracker_CreateJob_FullMethodName       = "/" + ServiceName + "/CreateJob"
	JobTracker_UpdateJob_FullMethodName       = "/" + ServiceName + "/UpdateJob"
	JobTracker_DeleteJob_FullMethodName       = "/" + ServiceName + "/DeleteJob"
	JobTracker_ListJobs_FullMethodName        = "/" + ServiceName + "/ListJobs"
	JobTracker_ListDefaultTags_FullMethodName = "/" + ServiceName + "/ListDefaultTags"
	JobTracker_ListCustomTags_FullMethodName  = "/" + ServiceName + "/ListCustomTags"
	JobTracker_CreateTag_FullMethodName       = "/" + ServiceName + "/CreateTag"
	JobTracker_DeleteTag_FullMethodName       = "/" + ServiceName + "/DeleteTag"
	JobTracker_GetStats_FullMethodName        = "/" + ServiceName + "/GetStats"
	JobTracker_ExportJobs_FullMethodName      = "/" + ServiceName + "/ExportJobs"
)

type JobTrackerClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	CreateJob(ctx context.Context, in *CreateJobRequest, opts ...grpc.CallOption) (*CreateJobResponse, error)
	UpdateJob(ctx context.Context, in *UpdateJobRequest, opts ...grpc.CallOption) (*UpdateJobResponse, error)
	DeleteJob(ctx context.Context, in *DeleteJobRequest, opts ...grpc.CallOption) (*DeleteJobResponse, error)
	ListJobs(ctx context.Context, in *ListJobsRequest, opts ...grpc.CallOption) (*ListJobsResponse, error)
	ListDefaultTags(ctx context.Context, in *ListTagsRequest, opts ...grpc.CallOption) (*ListTagsResponse, error)
	ListCustomTags(ctx context.Context, in *ListTagsRequest, opts ...grpc.CallOption) (*ListTagsResponse, error)
	CreateTag(ctx context.Context, in *CreateTagRequest, opts ...grpc.CallOption) (*CreateTagResponse, error)
	DeleteTag(ctx context.Context, in *DeleteTagRequest, opts ...grpc.CallOption) (*DeleteTagResponse, error)
	GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*GetStatsResponse, error)
	ExportJobs(ctx context.Context, in *ExportJobsRequest, opts ...grpc.CallOption) (*ExportJobsResponse, error)
}

type jobTrackerClient struct {
	cc grpc.ClientConnInterface
}

func NewJobTrackerClient(cc grpc.ClientConnInterface) JobTrackerClient {
	return &jobTrackerClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *jobTrackerClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, JobTracker_Ping_FullMethodName, in, opts)
}

func (c *jobTrackerClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, JobTracker_Register_FullMethodName, in, opts)
}

func (c *jobTrackerClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, JobTracker_Login_FullMethodName, in, opts)
}

func (c *jobTrackerClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, JobTracker_RefreshToken_FullMethodName, in, opts)
}

func (c *jobTrackerClient) CreateJob(ctx context.Context, in *CreateJobRequest, opts ...grpc.CallOption) (*CreateJobResponse, error) {
	return invoke[CreateJobResponse](ctx, c.cc, JobTracker_CreateJob_FullMethodName, in, opts)
}

func (c *jobTrackerClient) UpdateJob(ctx context.Context, in *UpdateJobRequest, opts ...grpc.CallOption) (*UpdateJobResponse, error) {
	return invoke[UpdateJobResponse](ctx, c.cc, JobTracker_UpdateJob_FullMethodName, in, opts)
}

func (c *jobTrackerClient) DeleteJob(ctx context.Context, in *DeleteJobRequest, opts ...grpc.CallOption) (*DeleteJobResponse, error) {
	return invoke[DeleteJobResponse](ctx, c.cc, JobTracker_DeleteJob_FullMethodName, in, opts)
}

func (c *jobTrackerClient) ListJobs(ctx context.Context, in *ListJobsRequest, opts ...grpc.CallOption) (*ListJobsResponse, error) {
	return invoke[ListJobsResponse](ctx, c.cc, JobTracker_ListJobs_FullMethodName, in, opts)
}

func (c *jobTrackerClient) ListDefaultTags(ctx context.Context, in *ListTagsRequest, opts ...grpc.CallOption) (*ListTagsResponse, error) {
	return invoke[ListTagsResponse](ctx, c.cc, JobTracker_ListDefaultTags_FullMethodName, in, opts)
}

func (c *jobTrackerClient) ListCustomTags(ctx context.Context, in *ListTagsRequest, opts ...grpc.CallOption) (*ListTagsResponse, error) {
	return invoke[ListTagsResponse](ctx, c.cc, JobTracker_ListCustomTags_FullMethodName, in, opts)
}

func (c *jobTrackerClient) CreateTag(ctx context.Context, in *CreateTagRequest, opts ...grpc.CallOption) (*CreateTagResponse, error) {
	return invoke[CreateTagResponse](ctx, c.cc, JobTracker_CreateTag_FullMethodName, in, opts)
}

func (c *jobTrackerClient) DeleteTag(ctx context.Context, in *DeleteTagRequest, opts ...grpc.CallOption) (*DeleteTagResponse, error) {
	return invoke[DeleteTagResponse](ctx, c.cc, JobTracker_DeleteTag_FullMethodName, in, opts)
}

func (c *jobTrackerClient) GetStats(ctx context.Context, in *GetStatsRequest, opts ...grpc.CallOption) (*GetStatsResponse, error) {
	return invoke[GetStatsResponse](ctx, c.cc, JobTracker_GetStats_FullMethodName, in, opts)
}

func (c *jobTrackerClient) ExportJobs(ctx context.Context, in *ExportJobsRequest, opts ...grpc.CallOption) (*ExportJobsResponse, error) {
	return invoke[ExportJobsResponse](ctx, c.cc, JobTracker_ExportJobs_FullMethodName, in, opts)
}

// JobTrackerServer is implemented by the server handler. Embed
// UnimplementedJobTrackerServer to stay forward compatible.
type JobTrackerServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	CreateJob(context.Context, *CreateJobRequest) (*CreateJobResponse, error)
	UpdateJob(context.Context, *UpdateJobRequest) (*UpdateJobResponse, error)
	DeleteJob(context.Context, *DeleteJobRequest) (*DeleteJobResponse, error)
	ListJobs(context.Context, *ListJobsRequest) (*ListJobsResponse, error)
	ListDefaultTags(context.Context, *ListTagsRequest) (*ListTagsResponse, error)
	ListCustomTags(context.Context, *ListTagsRequest) (*ListTagsResponse, error)
	CreateTag(context.Context, *CreateTagRequest) (*CreateTagResponse, error)
	DeleteTag(context.Context, *DeleteTagRequest) (*DeleteTagResponse, error)
	GetStats(context.Context, *GetStatsRequest) (*GetStatsResponse, error)
	ExportJobs(context.Context, *ExportJobsRequest) (*ExportJobsResponse, error)
}

type UnimplementedJobTrackerServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedJobTrackerServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedJobTrackerServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedJobTrackerServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedJobTrackerServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, unimplemented("RefreshToken")
}
func (UnimplementedJobTrackerServer) CreateJob(context.Context, *CreateJobRequest) (*CreateJobResponse, error) {
	return nil, unimplemented("CreateJob")
}
func (UnimplementedJobTrackerServer) UpdateJob(context.Context, *UpdateJobRequest) (*UpdateJobResponse, error) {
	return nil, unimplemented("UpdateJob")
}
func (UnimplementedJobTrackerServer) DeleteJob(context.Context, *DeleteJobRequest) (*DeleteJobResponse, error) {
	return nil, unimplemented("DeleteJob")
}
func (UnimplementedJobTrackerServer) ListJobs(context.Context, *ListJobsRequest) (*ListJobsResponse, error) {
	return nil, unimplemented("ListJobs")
}
func (UnimplementedJobTrackerServer) ListDefaultTags(context.Context, *ListTagsRequest) (*ListTagsResponse, error) {
	return nil, unimplemented("ListDefaultTags")
}
func (UnimplementedJobTrackerServer) ListCustomTags(context.Context, *ListTagsRequest) (*ListTagsResponse, error) {
	return nil, unimplemented("ListCustomTags")
}
func (UnimplementedJobTrackerServer) CreateTag(context.Context, *CreateTagRequest) (*CreateTagResponse, error) {
	return nil, unimplemented("CreateTag")
}
func (UnimplementedJobTrackerServer) DeleteTag(context.Context, *DeleteTagRequest) (*DeleteTagResponse, error) {
	return nil, unimplemented("DeleteTag")
}
func (UnimplementedJobTrackerServer) GetStats(context.Context, *GetStatsRequest) (*GetStatsResponse, error) {
	return nil, unimplemented("GetStats")
}
func (UnimplementedJobTrackerServer) ExportJobs(context.Context, *ExportJobsRequest) (*ExportJobsResponse, error) {
	return nil, unimplemented("ExportJobs")
}

func RegisterJobTrackerServer(s grpc.ServiceRegistrar, srv JobTrackerServer) {
	s.RegisterService(&JobTracker_ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(JobTrackerServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(JobTrackerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(JobTrackerServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var JobTracker_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JobTrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(JobTracker_Ping_FullMethodName, JobTrackerServer.Ping)},
		{MethodName: "Register", Handler: unaryHandler(JobTracker_Register_FullMethodName, JobTrackerServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(JobTracker_Login_FullMethodName, JobTrackerServer.Login)},
		{MethodName: "RefreshToken", Handler: unaryHandler(JobTracker_RefreshToken_FullMethodName, JobTrackerServer.RefreshToken)},
		{MethodName: "CreateJob", Handler: unaryHandler(JobTracker_CreateJob_FullMethodName, JobTrackerServer.CreateJob)},
		{MethodName: "UpdateJob", Handler: unaryHandler(JobTracker_UpdateJob_FullMethodName, JobTrackerServer.UpdateJob)},
		{MethodName: "DeleteJob", Handler: unaryHandler(JobTracker_DeleteJob_FullMethodName, JobTrackerServer.DeleteJob)},
		{MethodName: "ListJobs", Handler: unaryHandler(JobTracker_ListJobs_FullMethodName, JobTrackerServer.ListJobs)},
		{MethodName: "ListDefaultTags", Handler: unaryHandler(JobTracker_ListDefaultTags_FullMethodName, JobTrackerServer.ListDefaultTags)},
		{MethodName: "ListCustomTags", Handler: unaryHandler(JobTracker_ListCustomTags_FullMethodName, JobTrackerServer.ListCustomTags)},
		{MethodName: "CreateTag", Handler: unaryHandler(JobTracker_CreateTag_FullMethodName, JobTrackerServer.CreateTag)},
		{MethodName: "DeleteTag", Handler: unaryHandler(JobTracker_DeleteTag_FullMethodName, JobTrackerServer.DeleteTag)},
		{MethodName: "GetStats", Handler: unaryHandler(JobTracker_GetStats_FullMethodName, JobTrackerServer.GetStats)},
		{MethodName: "ExportJobs", Handler: unaryHandler(JobTracker_ExportJobs_FullMethodName, JobTrackerServer.ExportJobs)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "applylog/v1/jobtracker",
}
