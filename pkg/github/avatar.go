package github

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/streakforge/streakd/pkg/utils"
)

// maxAvatarBytes caps how much image data a single badge will embed.
const maxAvatarBytes = 2 << 20

// FetchAvatar returns the user's PNG avatar. Any failure means "no avatar":
// callers render the badge without the decoration and never treat the error
// as fatal.
func (c *Client) FetchAvatar(ctx context.Context, username string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s.png", c.avatarBase, username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = utils.DrainAndClose(resp.Body)
		return nil, fmt.Errorf("avatar http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
	if cerr := utils.DrainAndClose(resp.Body); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
