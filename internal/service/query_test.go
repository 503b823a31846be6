package service

import (
	"context"
	"errors"
	"testing"

	"faceindex/internal/config"
	"faceindex/internal/event"
	"faceindex/internal/fetch"
	fetchMocks "faceindex/internal/fetch/mocks"
	"faceindex/internal/model"
	"faceindex/internal/recognition"
	recMocks "faceindex/internal/recognition/mocks"
	"faceindex/internal/repository"
	repoMocks "faceindex/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewQueryService(t *testing.T) {
	_, err := NewQueryService(nil, nil, nil, "lookup", discard)
	assert.Error(t, err)

	for _, mode := range []string{config.MatchModeSearch, config.MatchModeIndex} {
		svc, err := NewQueryService(nil, nil, nil, mode, nil)
		assert.NoError(t, err)
		assert.NotNil(t, svc)
	}
}

func TestQueryService_Match(t *testing.T) {
	ctx := context.Background()
	img := []byte("jpeg")
	url := "https://example.com/face.jpg"
	stored := []model.PersonRecord{
		{Name: "bob", FaceID: "f1", Image: "arn:aws:s3:::b/bob/2.jpg"},
		{Name: "alice", FaceID: "f1", Image: "arn:aws:s3:::b/alice/1.jpg"},
	}

	tests := []struct {
		name       string
		mode       string
		req        model.QueryRequest
		setupMocks func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository)
		want       []model.PersonRecord
		wantErr    error
		wantStage  Stage
	}{
		{
			name: "search mode returns records in store order",
			mode: config.MatchModeSearch,
			req:  model.QueryRequest{ImageURL: url},
			setupMocks: func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository) {
				mFetch.On("Fetch", mock.Anything, url).Return(img, nil).Once()
				mRec.On("MatchFromBytes", mock.Anything, img).Return(model.FaceIndexResult{FaceID: "f1"}, nil).Once()
				mRepo.On("FindByFaceID", mock.Anything, "f1").Return(stored, nil).Once()
			},
			want: stored,
		},
		{
			name: "index mode uses the mutating call",
			mode: config.MatchModeIndex,
			req:  model.QueryRequest{ImageURL: url},
			setupMocks: func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository) {
				mFetch.On("Fetch", mock.Anything, url).Return(img, nil).Once()
				mRec.On("IndexFromBytes", mock.Anything, img).Return(model.FaceIndexResult{FaceID: "f1"}, nil).Once()
				mRepo.On("FindByFaceID", mock.Anything, "f1").Return(stored, nil).Once()
			},
			want: stored,
		},
		{
			name: "no match yields empty result",
			mode: config.MatchModeSearch,
			req:  model.QueryRequest{ImageURL: url},
			setupMocks: func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository) {
				mFetch.On("Fetch", mock.Anything, url).Return(img, nil).Once()
				mRec.On("MatchFromBytes", mock.Anything, img).Return(model.FaceIndexResult{}, recognition.ErrNoFaceMatch).Once()
			},
			want: []model.PersonRecord{},
		},
		{
			name: "nil store result becomes empty",
			mode: config.MatchModeSearch,
			req:  model.QueryRequest{ImageURL: url},
			setupMocks: func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository) {
				mFetch.On("Fetch", mock.Anything, url).Return(img, nil).Once()
				mRec.On("MatchFromBytes", mock.Anything, img).Return(model.FaceIndexResult{FaceID: "f2"}, nil).Once()
				mRepo.On("FindByFaceID", mock.Anything, "f2").Return([]model.PersonRecord(nil), nil).Once()
			},
			want: []model.PersonRecord{},
		},
		{
			name:       "missing url",
			mode:       config.MatchModeSearch,
			req:        model.QueryRequest{},
			setupMocks: func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository) {},
			wantErr:    event.ErrInvalidRequest,
			wantStage:  StageValidate,
		},
		{
			name: "fetch failure stops before recognition",
			mode: config.MatchModeSearch,
			req:  model.QueryRequest{ImageURL: url},
			setupMocks: func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository) {
				mFetch.On("Fetch", mock.Anything, url).Return(nil, fetch.ErrFetch).Once()
			},
			wantErr:   fetch.ErrFetch,
			wantStage: StageFetch,
		},
		{
			name: "no face detected stops before lookup",
			mode: config.MatchModeIndex,
			req:  model.QueryRequest{ImageURL: url},
			setupMocks: func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository) {
				mFetch.On("Fetch", mock.Anything, url).Return(img, nil).Once()
				mRec.On("IndexFromBytes", mock.Anything, img).Return(model.FaceIndexResult{}, recognition.ErrNoFaceDetected).Once()
			},
			wantErr:   recognition.ErrNoFaceDetected,
			wantStage: StageIndex,
		},
		{
			name: "store failure",
			mode: config.MatchModeSearch,
			req:  model.QueryRequest{ImageURL: url},
			setupMocks: func(mFetch *fetchMocks.MockFetcher, mRec *recMocks.MockRecognizer, mRepo *repoMocks.MockPersonRepository) {
				mFetch.On("Fetch", mock.Anything, url).Return(img, nil).Once()
				mRec.On("MatchFromBytes", mock.Anything, img).Return(model.FaceIndexResult{FaceID: "f1"}, nil).Once()
				mRepo.On("FindByFaceID", mock.Anything, "f1").Return(nil, errors.Join(repository.ErrStore, errors.New("throttled"))).Once()
			},
			wantErr:   repository.ErrStore,
			wantStage: StageLookup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mFetch := new(fetchMocks.MockFetcher)
			mRec := new(recMocks.MockRecognizer)
			mRepo := new(repoMocks.MockPersonRepository)
			tt.setupMocks(mFetch, mRec, mRepo)

			svc, err := NewQueryService(mFetch, mRec, mRepo, tt.mode, discard)
			require.NoError(t, err)

			got, err := svc.Match(ctx, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				stage, ok := StageOf(err)
				assert.True(t, ok)
				assert.Equal(t, tt.wantStage, stage)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				assert.NotNil(t, got)
			}

			mFetch.AssertExpectations(t)
			mRec.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestQueryService_Match_FetchFailureSkipsRecognition(t *testing.T) {
	mFetch := new(fetchMocks.MockFetcher)
	mRec := new(recMocks.MockRecognizer)
	mRepo := new(repoMocks.MockPersonRepository)
	mFetch.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	svc, err := NewQueryService(mFetch, mRec, mRepo, config.MatchModeSearch, discard)
	require.NoError(t, err)

	_, err = svc.Match(context.Background(), model.QueryRequest{ImageURL: "https://unreachable.invalid/a.jpg"})

	assert.Error(t, err)
	mRec.AssertNotCalled(t, "MatchFromBytes", mock.Anything, mock.Anything)
	mRec.AssertNotCalled(t, "IndexFromBytes", mock.Anything, mock.Anything)
	mRepo.AssertNotCalled(t, "FindByFaceID", mock.Anything, mock.Anything)
}

func TestStageError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&StageError{Pipeline: PipelineQuery, Stage: StageFetch, Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "query pipeline failed at fetch: boom", err.Error())

	_, ok := StageOf(cause)
	assert.False(t, ok)
}
