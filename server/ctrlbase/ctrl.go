package ctrlbase

import (
	"path"

	"go.senan.xyz/ams/db"
)

type Controller struct {
	DB          *db.DB
	ProxyPrefix string
}

// Path returns a URL path with the proxy prefix included
func (c *Controller) Path(rel string) string {
	return path.Join(c.ProxyPrefix, rel)
}
