package v1

import (
	context "context"

	http "github.com/go-kratos/kratos/v2/transport/http"
)

const OperationDDayServiceTrackDDay = "/api.dday.v1.DDayService/TrackDDay"
const OperationDDayServiceListDDays = "/api.dday.v1.DDayService/ListDDays"
const OperationDDayServiceLookup = "/api.dday.v1.DDayService/Lookup"
const OperationDDayServiceGetWaitingUsers = "/api.dday.v1.DDayService/GetWaitingUsers"
const OperationDDayServiceListAwaited = "/api.dday.v1.DDayService/ListAwaited"
const OperationDDayServiceHealth = "/api.dday.v1.DDayService/Health"

type DDayServiceHTTPServer interface {
	TrackDDay(context.Context, *TrackDDayRequest) (*TrackDDayReply, error)
	ListDDays(context.Context, *ListDDaysRequest) (*ListDDaysReply, error)
	Lookup(context.Context, *LookupRequest) (*LookupReply, error)
	GetWaitingUsers(context.Context, *GetWaitingUsersRequest) (*GetWaitingUsersReply, error)
	ListAwaited(context.Context, *ListAwaitedRequest) (*ListAwaitedReply, error)
	Health(context.Context, *HealthRequest) (*HealthReply, error)
}

func RegisterDDayServiceHTTPServer(s *http.Server, srv DDayServiceHTTPServer) {
	r := s.Route("/")
	r.POST("/v1/ddays", _DDayService_TrackDDay0_HTTP_Handler(srv))
	r.GET("/v1/ddays", _DDayService_ListDDays0_HTTP_Handler(srv))
	r.GET("/v1/lookup", _DDayService_Lookup0_HTTP_Handler(srv))
	r.GET("/v1/movies/{movie_id}/waiting", _DDayService_GetWaitingUsers0_HTTP_Handler(srv))
	r.GET("/v1/rankings/awaited", _DDayService_ListAwaited0_HTTP_Handler(srv))
	r.GET("/healthz", _DDayService_Health0_HTTP_Handler(srv))
}

func _DDayService_TrackDDay0_HTTP_Handler(srv DDayServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in TrackDDayRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationDDayServiceTrackDDay)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.TrackDDay(ctx, req.(*TrackDDayRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*TrackDDayReply)
		return ctx.Result(200, reply)
	}
}

func _DDayService_ListDDays0_HTTP_Handler(srv DDayServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListDDaysRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationDDayServiceListDDays)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListDDays(ctx, req.(*ListDDaysRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ListDDaysReply)
		return ctx.Result(200, reply)
	}
}

func _DDayService_Lookup0_HTTP_Handler(srv DDayServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in LookupRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationDDayServiceLookup)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Lookup(ctx, req.(*LookupRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*LookupReply)
		return ctx.Result(200, reply)
	}
}

func _DDayService_GetWaitingUsers0_HTTP_Handler(srv DDayServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GetWaitingUsersRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationDDayServiceGetWaitingUsers)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetWaitingUsers(ctx, req.(*GetWaitingUsersRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*GetWaitingUsersReply)
		return ctx.Result(200, reply)
	}
}

func _DDayService_ListAwaited0_HTTP_Handler(srv DDayServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListAwaitedRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationDDayServiceListAwaited)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListAwaited(ctx, req.(*ListAwaitedRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*ListAwaitedReply)
		return ctx.Result(200, reply)
	}
}

func _DDayService_Health0_HTTP_Handler(srv DDayServiceHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in HealthRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationDDayServiceHealth)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Health(ctx, req.(*HealthRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*HealthReply)
		return ctx.Result(200, reply)
	}
}
