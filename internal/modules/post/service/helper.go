package service

import (
	"context"

	"santara.dev/chirpnet/internal/model"
	postDto "santara.dev/chirpnet/internal/modules/post/dto"
	commonDto "santara.dev/chirpnet/pkg/dto"
)

// mapToResponse projects a post for delivery: authors and comment authors
// are reduced to their public fields, never the stored user rows.
func (s *postService) mapToResponse(ctx context.Context, post *model.Post) (*postDto.PostResponse, error) {
	likerIDs, err := s.postRepo.ListLikerIDs(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	comments := make([]postDto.CommentResponse, 0, len(post.Comments))
	for i := range post.Comments {
		c := &post.Comments[i]
		comments = append(comments, postDto.CommentResponse{
			ID:        c.ID,
			Author:    commonDto.NewAuthorResponse(&c.User),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}

	return &postDto.PostResponse{
		ID:        post.ID,
		Author:    commonDto.NewAuthorResponse(&post.User),
		Text:      post.Text,
		Image:     post.Image,
		Likes:     likerIDs,
		Comments:  comments,
		CreatedAt: post.CreatedAt,
	}, nil
}

func (s *postService) mapAllToResponse(ctx context.Context, posts []model.Post) ([]postDto.PostResponse, error) {
	responses := make([]postDto.PostResponse, 0, len(posts))
	for i := range posts {
		resp, err := s.mapToResponse(ctx, &posts[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}
