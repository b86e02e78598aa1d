package recommend

import (
	"net/http"

	"github.com/ebitech02/WanderWise/internal/modules/recommend/controller"
	"github.com/ebitech02/WanderWise/internal/modules/recommend/service"
	"github.com/ebitech02/WanderWise/internal/mqtt"
)

// RegisterFeature mounts the recommendation pages and API on mux. When
// subscriber is non-nil, cache invalidations received over MQTT are applied
// to svc's climate cache.
func RegisterFeature(mux *http.ServeMux, svc *service.Service, subscriber mqtt.MQTTSubscriber) {
	if subscriber != nil {
		svc.Register(subscriber)
	}
	controller.NewRecommendController(svc).RegisterRoutes(mux)
}
