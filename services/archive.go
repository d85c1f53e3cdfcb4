package services

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Archiver keeps a copy of every committed import file
type Archiver interface {
	Archive(ctx context.Context, batchID, fileName string, data []byte) (string, error)
}

// NoopArchiver is used when Cloudinary is not configured
type NoopArchiver struct{}

func (NoopArchiver) Archive(ctx context.Context, batchID, fileName string, data []byte) (string, error) {
	return "", nil
}

// CloudinaryArchiver uploads import files as raw assets
type CloudinaryArchiver struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryArchiver(cld *cloudinary.Cloudinary) *CloudinaryArchiver {
	return &CloudinaryArchiver{cld: cld, folder: "importaciones"}
}

func (a *CloudinaryArchiver) Archive(ctx context.Context, batchID, fileName string, data []byte) (string, error) {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	resp, err := a.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       a.folder,
		PublicID:     batchID + "-" + base,
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}
