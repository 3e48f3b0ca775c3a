package service

import (
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"

	"santara.dev/chirpnet/internal/model"
)

const postsIndex = "posts"

// SearchService keeps the post corpus searchable.
type SearchService interface {
	IndexPost(post *model.Post) error
	DeletePost(id string) error
	SearchPostIDs(query string, limit int64) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

type meiliPostDoc struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	sortableAttrs := []string{"created_at"}
	if _, err := s.client.Index(postsIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update posts sortable attributes: %v", err)
	}
}

func (s *meiliSearchService) cleanTextForIndex(text string) string {
	sanitized := s.sanitizer.Sanitize(text)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliSearchService) IndexPost(post *model.Post) error {
	doc := meiliPostDoc{
		ID:        post.ID.String(),
		Text:      s.cleanTextForIndex(post.Text),
		UserID:    post.UserID.String(),
		Username:  post.User.Username,
		CreatedAt: post.CreatedAt.Unix(),
	}

	if _, err := s.client.Index(postsIndex).AddDocuments([]meiliPostDoc{doc}, strPtr("id")); err != nil {
		return fmt.Errorf("failed to index post: %w", err)
	}
	return nil
}

func (s *meiliSearchService) DeletePost(id string) error {
	if _, err := s.client.Index(postsIndex).DeleteDocument(id); err != nil {
		return fmt.Errorf("failed to delete post from index: %w", err)
	}
	return nil
}

func (s *meiliSearchService) SearchPostIDs(query string, limit int64) ([]uuid.UUID, error) {
	resp, err := s.client.Index(postsIndex).Search(query, &meilisearch.SearchRequest{
		Limit: limit,
		Sort:  []string{"created_at:desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var doc meiliPostDoc
		if err := hit.Decode(&doc); err != nil {
			continue
		}
		if id, err := uuid.Parse(doc.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
