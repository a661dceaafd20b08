package votingarchive

import (
	"bytes"
	"context"
	votingapimodels "docflow-backend/models/api/voting"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Provider архив завершённых голосований
type Provider interface {
	Archive(ctx context.Context, voting votingapimodels.VotingView) error
}

// Instance nil, если архив не настроен
var Instance Provider

// ObjectPutter часть minio.Client, которая нужна архиву
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

func NewHandler(client ObjectPutter, bucketName string) {
	Instance = NewInstance(client, bucketName)
}

func NewInstance(client ObjectPutter, bucketName string) Provider {
	return impl{
		client:     client,
		bucketName: bucketName,
	}
}

type impl struct {
	client     ObjectPutter
	bucketName string
}

func (i impl) Archive(ctx context.Context, voting votingapimodels.VotingView) error {
	body, err := json.Marshal(voting)
	if err != nil {
		return errors.Wrap(err, "ошибка сериализации голосования")
	}
	info, err := i.client.PutObject(ctx, i.bucketName, ObjectName(voting), bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return errors.Wrap(err, "ошибка сохранения голосования в архив")
	}
	log.
		WithField("voting_id", voting.ID).
		WithField("object", info.Key).
		Info("голосование сохранено в архив")
	return nil
}

func ObjectName(voting votingapimodels.VotingView) string {
	return fmt.Sprintf("votings/%s/%s.json", voting.DocumentVersionID, voting.ID)
}
