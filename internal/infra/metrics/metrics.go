package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce     sync.Once
	captchaIssued    prometheus.Counter
	smsRequests      *prometheus.CounterVec
	registerRequests *prometheus.CounterVec
	docDownloads     *prometheus.CounterVec
)

const namespaceMetrics = "portal"

// MustRegister 初始化 Prometheus 指标并注册 Go 运行时采样器，需在应用启动阶段调用一次。
func MustRegister() {
	registerOnce.Do(func() {
		captchaIssued = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceMetrics,
			Subsystem: "verify",
			Name:      "captcha_issued_total",
			Help:      "图形验证码下发次数。",
		})
		smsRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMetrics,
			Subsystem: "verify",
			Name:      "sms_requests_total",
			Help:      "短信验证码请求次数，按结果统计。",
		}, []string{"status"})
		registerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMetrics,
			Subsystem: "users",
			Name:      "register_requests_total",
			Help:      "注册请求次数，按结果统计。",
		}, []string{"status"})
		docDownloads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceMetrics,
			Subsystem: "doc",
			Name:      "downloads_total",
			Help:      "文档下载代理请求次数，按结果统计。",
		}, []string{"status"})

		for _, c := range []prometheus.Collector{
			captchaIssued,
			smsRequests,
			registerRequests,
			docDownloads,
			collectors.NewGoCollector(),
		} {
			if err := prometheus.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// CaptchaIssued 记录一次验证码下发。
func CaptchaIssued() {
	if captchaIssued != nil {
		captchaIssued.Inc()
	}
}

// SMSRequest 记录一次短信请求及其结果（ok/ratelimited/captchafail/...）。
func SMSRequest(status string) {
	if smsRequests != nil {
		smsRequests.WithLabelValues(status).Inc()
	}
}

// RegisterRequest 记录一次注册请求及其结果。
func RegisterRequest(status string) {
	if registerRequests != nil {
		registerRequests.WithLabelValues(status).Inc()
	}
}

// DocDownload 记录一次下载代理请求及其结果。
func DocDownload(status string) {
	if docDownloads != nil {
		docDownloads.WithLabelValues(status).Inc()
	}
}
