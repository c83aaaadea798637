package services

import (
  "context"
  "testing"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/skillforge/skillforge-backend/internal/apperr"
  "github.com/skillforge/skillforge-backend/internal/types"
)

type questionBankFixture struct {
  svc       QuestionBankService
  questions *fakeQuestionBankRepo
  lessons   *fakeLessonRepo
  authorID  uuid.UUID
  courseID  uuid.UUID
  lessonID  uuid.UUID
}

func newQuestionBankFixture(t *testing.T) *questionBankFixture {
  t.Helper()
  f := &questionBankFixture{
    questions: newFakeQuestionBankRepo(),
    lessons:   newFakeLessonRepo(),
    authorID:  uuid.New(),
    courseID:  uuid.New(),
    lessonID:  uuid.New(),
  }
  f.svc = NewQuestionBankService(testDB(), testLogger(), f.questions, f.lessons)
  f.lessons.lessons[f.lessonID] = &types.Lesson{ID: f.lessonID, CourseID: f.courseID, Title: "l", Order: 1}
  return f
}

func (f *questionBankFixture) newQuestion() *types.QuestionBank {
  lessonID := f.lessonID
  return &types.QuestionBank{
    LessonID:        &lessonID,
    QuestionText:    "pick A",
    Options:         datatypes.JSON([]byte(`["A","B","C"]`)),
    CorrectAnswer:   "A",
    DifficultyLevel: types.QuestionDifficultyEasy,
  }
}

func TestCreateQuestionDefaultsAndCourseBinding(t *testing.T) {
  f := newQuestionBankFixture(t)
  ctx := context.Background()

  created, err := f.svc.CreateQuestion(ctx, f.authorID, f.newQuestion())
  if err != nil {
    t.Fatalf("CreateQuestion returned error: %v", err)
  }
  if created.CourseID != f.courseID {
    t.Errorf("course id = %s, want the lesson's course %s", created.CourseID, f.courseID)
  }
  if created.QuestionType != "multiple_choice" || created.Points != 1 || created.EstimatedTimeS != 60 {
    t.Errorf("defaults not applied: type=%q points=%d time=%d", created.QuestionType, created.Points, created.EstimatedTimeS)
  }
  if !created.IsActive {
    t.Error("new question not active")
  }
  if created.CreatedBy == nil || *created.CreatedBy != f.authorID {
    t.Errorf("created_by = %v, want %s", created.CreatedBy, f.authorID)
  }
}

func TestCreateQuestionValidation(t *testing.T) {
  f := newQuestionBankFixture(t)
  ctx := context.Background()

  cases := []struct {
    name   string
    mutate func(q *types.QuestionBank)
  }{
    {"answer outside options", func(q *types.QuestionBank) { q.CorrectAnswer = "Z" }},
    {"unknown difficulty", func(q *types.QuestionBank) { q.DifficultyLevel = "expert" }},
    {"malformed options", func(q *types.QuestionBank) { q.Options = datatypes.JSON([]byte(`"not-an-array"`)) }},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      q := f.newQuestion()
      tc.mutate(q)
      if _, err := f.svc.CreateQuestion(ctx, f.authorID, q); !apperr.IsKind(err, apperr.KindValidation) {
        t.Fatalf("CreateQuestion = %v, want validation error", err)
      }
    })
  }

  t.Run("unknown lesson", func(t *testing.T) {
    q := f.newQuestion()
    missing := uuid.New()
    q.LessonID = &missing
    if _, err := f.svc.CreateQuestion(ctx, f.authorID, q); !apperr.IsKind(err, apperr.KindNotFound) {
      t.Fatalf("CreateQuestion = %v, want not found", err)
    }
  })
}

func TestUpdateQuestionRevalidates(t *testing.T) {
  f := newQuestionBankFixture(t)
  ctx := context.Background()

  created, err := f.svc.CreateQuestion(ctx, f.authorID, f.newQuestion())
  if err != nil {
    t.Fatalf("CreateQuestion returned error: %v", err)
  }

  updated, err := f.svc.UpdateQuestion(ctx, &types.QuestionBank{ID: created.ID, CorrectAnswer: "B", Points: 3})
  if err != nil {
    t.Fatalf("UpdateQuestion returned error: %v", err)
  }
  if updated.CorrectAnswer != "B" || updated.Points != 3 {
    t.Errorf("update not applied: answer=%q points=%d", updated.CorrectAnswer, updated.Points)
  }
  if updated.QuestionText != "pick A" {
    t.Errorf("untouched field changed: %q", updated.QuestionText)
  }

  if _, err := f.svc.UpdateQuestion(ctx, &types.QuestionBank{ID: created.ID, CorrectAnswer: "Z"}); !apperr.IsKind(err, apperr.KindValidation) {
    t.Fatalf("UpdateQuestion with answer outside options = %v, want validation error", err)
  }
}

func TestDeleteQuestionHidesFromSelection(t *testing.T) {
  f := newQuestionBankFixture(t)
  ctx := context.Background()

  created, err := f.svc.CreateQuestion(ctx, f.authorID, f.newQuestion())
  if err != nil {
    t.Fatalf("CreateQuestion returned error: %v", err)
  }
  if err := f.svc.DeleteQuestion(ctx, created.ID); err != nil {
    t.Fatalf("DeleteQuestion returned error: %v", err)
  }

  listed, err := f.svc.ListQuestions(ctx, f.lessonID)
  if err != nil {
    t.Fatalf("ListQuestions returned error: %v", err)
  }
  if len(listed) != 0 {
    t.Errorf("deleted question still listed: %d", len(listed))
  }
  picked, err := f.questions.PickRandom(ctx, nil, f.lessonID, types.QuestionDifficultyEasy, nil, 1)
  if err != nil {
    t.Fatalf("PickRandom returned error: %v", err)
  }
  if len(picked) != 0 {
    t.Error("deleted question still selectable")
  }

  if err := f.svc.DeleteQuestion(ctx, created.ID); !apperr.IsKind(err, apperr.KindNotFound) {
    t.Fatalf("second DeleteQuestion = %v, want not found", err)
  }
}
