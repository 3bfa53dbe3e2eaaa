package tasks

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/planweek/planweek-backend/pkg/auth"
	"github.com/planweek/planweek-backend/pkg/communication"
	"github.com/planweek/planweek-backend/pkg/date"
	"github.com/planweek/planweek-backend/pkg/logger"
)

// Handler handles all task related API calls
type Handler struct {
	TaskRepository  TaskRepositoryInterface
	Burnout         BurnoutSourceInterface
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
}

// WeekResponse is the payload of the week view route
type WeekResponse struct {
	WeekStart string    `json:"week_start"`
	Days      []WeekDay `json:"days"`
}

// WeekGet builds the seven day buckets for the requested week (current week
// when no start is given). Tasks and burnout scores are fetched concurrently;
// burnout degrades to zeros when its fetch fails.
func (handler *Handler) WeekGet(writer http.ResponseWriter, request *http.Request) {
	userID := auth.UserID(request.Context())

	weekStart := date.WeekStart(time.Now())
	if startQuery := request.URL.Query().Get("start"); startQuery != "" {
		parsed, err := date.Parse(startQuery)
		if err != nil {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest,
				"Wrong date format in query string", err)
			return
		}
		weekStart = date.WeekStart(parsed)
	}

	startKey := date.Format(weekStart)
	endKey := date.Format(date.WeekEnd(weekStart))

	var weekTasks []Task
	var scores []BurnoutScore
	var scoresErr error

	g, groupCtx := errgroup.WithContext(request.Context())
	g.Go(func() error {
		var err error
		weekTasks, err = handler.TaskRepository.FindByDateRange(groupCtx, userID, startKey, endKey)
		return err
	})
	g.Go(func() error {
		scores, scoresErr = handler.Burnout.BurnoutScores(groupCtx, userID, startKey)
		return nil
	})

	if err := g.Wait(); err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not load tasks for week", err)
		return
	}

	if scoresErr != nil {
		handler.Logger.Warning("failed to load burnout scores, rendering zeros: " + scoresErr.Error())
		scores = nil
	}

	handler.ResponseManager.Respond(writer, WeekResponse{
		WeekStart: startKey,
		Days:      BuildWeekDays(weekStart, weekTasks, scores, time.Now()),
	})
}

// TaskAdd is the route for adding a task
func (handler *Handler) TaskAdd(writer http.ResponseWriter, request *http.Request) {
	userID := auth.UserID(request.Context())

	data := CreateTaskData{}
	err := json.NewDecoder(request.Body).Decode(&data)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	data.SanitizeDates()

	v := validator.New()
	err = v.Struct(data)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	task, err := handler.TaskRepository.Add(request.Context(), userID, data)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Persisting task in database did not work", err)
		return
	}

	handler.invalidateBurnout(request, userID, task.ScheduledDate)
	handler.ResponseManager.Respond(writer, task)
}

// TaskUpdate is the route for partially updating a task
func (handler *Handler) TaskUpdate(writer http.ResponseWriter, request *http.Request) {
	userID := auth.UserID(request.Context())
	taskID := mux.Vars(request)["taskID"]

	updates := UpdateTaskData{}
	err := json.NewDecoder(request.Body).Decode(&updates)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	updates.SanitizeDates()

	v := validator.New()
	err = v.Struct(updates)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	task, err := handler.TaskRepository.Update(request.Context(), userID, taskID, updates)
	if err != nil {
		handler.respondStoreError(writer, "Could not persist task", err)
		return
	}

	handler.invalidateBurnout(request, userID, task.ScheduledDate)
	handler.ResponseManager.Respond(writer, task)
}

// TaskDelete deletes a task
func (handler *Handler) TaskDelete(writer http.ResponseWriter, request *http.Request) {
	userID := auth.UserID(request.Context())
	taskID := mux.Vars(request)["taskID"]

	task, err := handler.TaskRepository.FindByID(request.Context(), userID, taskID)
	if err != nil {
		handler.respondStoreError(writer, "Couldn't find task", err)
		return
	}

	if err := handler.TaskRepository.Delete(request.Context(), userID, taskID); err != nil {
		handler.respondStoreError(writer, "Could not delete task", err)
		return
	}

	handler.invalidateBurnout(request, userID, task.ScheduledDate)
	handler.ResponseManager.RespondWithNoContent(writer)
}

// TaskToggle flips the completed flag of a task
func (handler *Handler) TaskToggle(writer http.ResponseWriter, request *http.Request) {
	userID := auth.UserID(request.Context())
	taskID := mux.Vars(request)["taskID"]

	task, err := handler.TaskRepository.FindByID(request.Context(), userID, taskID)
	if err != nil {
		handler.respondStoreError(writer, "Couldn't find task", err)
		return
	}

	completed := !task.Completed
	updated, err := handler.TaskRepository.Update(request.Context(), userID, taskID, UpdateTaskData{Completed: &completed})
	if err != nil {
		handler.respondStoreError(writer, "Could not persist task", err)
		return
	}

	handler.ResponseManager.Respond(writer, updated)
}

// GetAllTasks is the route for getting all tasks
func (handler *Handler) GetAllTasks(writer http.ResponseWriter, request *http.Request) {
	userID := auth.UserID(request.Context())

	tasks, err := handler.TaskRepository.FindAll(request.Context(), userID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Problem in query", err)
		return
	}

	handler.ResponseManager.Respond(writer, tasks)
}

func (handler *Handler) respondStoreError(writer http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated):
		status = http.StatusUnauthorized
	}
	handler.ResponseManager.RespondWithError(writer, status, message, err)
}

func (handler *Handler) invalidateBurnout(request *http.Request, userID string, scheduledDate *string) {
	invalidator, ok := handler.Burnout.(burnoutInvalidator)
	if !ok || scheduledDate == nil {
		return
	}

	if day, err := date.Parse(*scheduledDate); err == nil {
		invalidator.Invalidate(request.Context(), userID, date.Format(date.WeekStart(day)))
	}
}
