package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/applylog/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request")

	user, err := s.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &pb.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toPBTokenPair(tokens), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshTokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toPBTokenPair(tokens), nil
}

// requireUser returns the caller set by accessTokenInterceptor.
func requireUser(ctx context.Context) (string, error) {
	id, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func (s *GRPCServer) CreateJob(ctx context.Context, req *pb.CreateJobRequest) (*pb.CreateJobResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.Create(ctx, userID, req.IdempotencyKey, fromPBJobInput(req.Job), fromPBMeta(req.StatusMeta, req.PlatformsMeta))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.CreateJobResponse{Job: toPBJob(job)}, nil
}

func (s *GRPCServer) UpdateJob(ctx context.Context, req *pb.UpdateJobRequest) (*pb.UpdateJobResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.Update(ctx, userID, req.ID, fromPBPatch(req.Patch), fromPBMeta(req.StatusMeta, req.PlatformsMeta))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.UpdateJobResponse{Job: toPBJob(job)}, nil
}

func (s *GRPCServer) DeleteJob(ctx context.Context, req *pb.DeleteJobRequest) (*pb.DeleteJobResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.jobs.Delete(ctx, userID, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.DeleteJobResponse{}, nil
}

func (s *GRPCServer) ListJobs(ctx context.Context, req *pb.ListJobsRequest) (*pb.ListJobsResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.jobs.List(ctx, userID, fromPBQuery(req))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &pb.ListJobsResponse{
		Jobs: make([]pb.Job, 0, len(page.Jobs)),
		Pagination: pb.Pagination{
			CurrentPage: page.Page,
			TotalPages:  page.TotalPages,
			TotalItems:  page.TotalItems,
			Limit:       page.Limit,
		},
	}
	for i := range page.Jobs {
		resp.Jobs = append(resp.Jobs, toPBJob(&page.Jobs[i]))
	}
	return resp, nil
}

func (s *GRPCServer) ListDefaultTags(ctx context.Context, req *pb.ListTagsRequest) (*pb.ListTagsResponse, error) {
	tags, err := s.tags.ListDefaults(ctx, req.Kind)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.ListTagsResponse{Tags: toPBTags(tags)}, nil
}

func (s *GRPCServer) ListCustomTags(ctx context.Context, req *pb.ListTagsRequest) (*pb.ListTagsResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.ListCustom(ctx, userID, req.Kind)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.ListTagsResponse{Tags: toPBTags(tags)}, nil
}

func (s *GRPCServer) CreateTag(ctx context.Context, req *pb.CreateTagRequest) (*pb.CreateTagResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := s.tags.Create(ctx, userID, req.Kind, req.Key, req.Name)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.CreateTagResponse{Tag: pb.TagRef{Key: tag.Key, Name: tag.Name}}, nil
}

func (s *GRPCServer) DeleteTag(ctx context.Context, req *pb.DeleteTagRequest) (*pb.DeleteTagResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.tags.Delete(ctx, userID, req.Kind, req.Key); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.DeleteTagResponse{}, nil
}

func (s *GRPCServer) GetStats(ctx context.Context, req *pb.GetStatsRequest) (*pb.GetStatsResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	st, err := s.stats.Get(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toPBStats(st), nil
}

func (s *GRPCServer) ExportJobs(ctx context.Context, req *pb.ExportJobsRequest) (*pb.ExportJobsResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	link, err := s.exports.Publish(ctx, userID, req.Format)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.ExportJobsResponse{
		FileName:    link.FileName,
		ContentType: link.ContentType,
		URL:         link.URL,
		ExpiresAt:   timestamp(link.ExpiresAt),
	}, nil
}
