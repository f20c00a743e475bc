package netsvr

import (
	"net/http"

	"github.com/zintix-labs/simath/server/app"
)

// NetSvr 封裝「路由 + 服務啟停」，只交給最外層組裝使用。
// NetSvr 同時實作 app.Component，可直接交給 app.App 管理生命週期。
type NetSvr interface {
	NetRouter
	app.Component
	http.Handler
}

// NetRouter 純路由行為。子模組只拿得到 NetRouter，無法控制 server 啟停。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
