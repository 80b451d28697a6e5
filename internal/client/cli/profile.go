package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

const maxAvatarSize = 5 << 20

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// Avatar uploads an image file as the profile picture.
func (a *App) Avatar(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter image path", a.out)
	if err != nil {
		return err
	}
	data, err := readFile(path)
	if err != nil {
		return a.report(err)
	}
	if len(data) > maxAvatarSize {
		return a.report(fmt.Errorf("image is larger than %d bytes", maxAvatarSize))
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	url, err := a.client.UploadAvatar(ctx, data, http.DetectContentType(data))
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Avatar:", url)
	return nil
}
