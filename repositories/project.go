//go:generate go run go.uber.org/mock/mockgen -source=project.go -destination=../mocks/mock_project_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"taskroom/domain"
	"taskroom/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IProjectRepository interface {
	CreateProject(ownerID, name, description string) (domain.Project, error)
	GetProject(projectID int) (domain.Project, error)
	ListProjects() ([]domain.Project, error)
	CreateTask(projectID int, title, description string, dueDate *time.Time, assignedToID string) (domain.Task, error)
	GetTask(taskID int) (domain.Task, error)
	CompleteTask(taskID int) (domain.Task, error)
	Close() error
}

// ProjectRepository stores projects and tasks in BadgerDB.
//
// Keys:
//
//	project:<id padded>          -> JSON project (without tasks)
//	task:<id padded>             -> JSON task
//	ptask:<project id>:<task id> -> task id index, for per-project prefix scans
//
// Zero padding keeps lexicographical iteration in id order. Ids come from
// badger sequences so they are positive, monotonic integers surviving
// restarts (the sequence bandwidth may leave gaps, which is fine).
type ProjectRepository struct {
	db         *badger.DB
	projectSeq *badger.Sequence
	taskSeq    *badger.Sequence
}

func NewProjectRepository(db *badger.DB) (*ProjectRepository, error) {
	projectSeq, err := db.GetSequence([]byte("seq:project"), 64)
	if err != nil {
		return nil, err
	}
	taskSeq, err := db.GetSequence([]byte("seq:task"), 64)
	if err != nil {
		_ = projectSeq.Release()
		return nil, err
	}
	return &ProjectRepository{db: db, projectSeq: projectSeq, taskSeq: taskSeq}, nil
}

// Close releases the id sequences back to badger.
func (r *ProjectRepository) Close() error {
	if err := r.projectSeq.Release(); err != nil {
		return err
	}
	return r.taskSeq.Release()
}

func projectKey(id int) []byte       { return []byte(fmt.Sprintf("project:%010d", id)) }
func taskKey(id int) []byte          { return []byte(fmt.Sprintf("task:%010d", id)) }
func projectTaskKey(p, t int) []byte { return []byte(fmt.Sprintf("ptask:%010d:%010d", p, t)) }
func projectTaskPrefix(p int) []byte { return []byte(fmt.Sprintf("ptask:%010d:", p)) }

type diskProject struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type diskTask struct {
	ID           int        `json:"id"`
	ProjectID    int        `json:"project_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	IsCompleted  bool       `json:"is_completed"`
	AssignedToID string     `json:"assigned_to_id,omitempty"`
}

func (r *ProjectRepository) nextID(seq *badger.Sequence) (int, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// Sequences start at zero; project and task ids are positive integers.
	return int(n) + 1, nil
}

func (r *ProjectRepository) CreateProject(ownerID, name, description string) (domain.Project, error) {
	id, err := r.nextID(r.projectSeq)
	if err != nil {
		return domain.Project{}, err
	}

	record := diskProject{
		ID:          id,
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return domain.Project{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(projectKey(id), data)
	})
	if err != nil {
		return domain.Project{}, err
	}
	return fromDiskProject(record), nil
}

// GetProject loads a project together with its tasks.
func (r *ProjectRepository) GetProject(projectID int) (domain.Project, error) {
	var record diskProject
	var tasks []diskTask

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(projectKey(projectID))
		if err == badger.ErrKeyNotFound {
			return errors.ErrProjectNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}

		tasks, err = r.tasksOfProject(txn, projectID)
		return err
	})
	if err != nil {
		return domain.Project{}, err
	}

	project := fromDiskProject(record)
	project.Tasks = lo.Map(tasks, func(item diskTask, _ int) domain.Task {
		return fromDiskTask(item)
	})
	return project, nil
}

func (r *ProjectRepository) tasksOfProject(txn *badger.Txn, projectID int) ([]diskTask, error) {
	var tasks []diskTask
	prefix := projectTaskPrefix(projectID)

	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var taskID int
		if err := it.Item().Value(func(val []byte) error {
			_, err := fmt.Sscanf(string(val), "%d", &taskID)
			return err
		}); err != nil {
			return nil, err
		}

		item, err := txn.Get(taskKey(taskID))
		if err != nil {
			return nil, err
		}
		var task diskTask
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &task)
		}); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *ProjectRepository) ListProjects() ([]domain.Project, error) {
	var records []diskProject

	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("project:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record diskProject
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(records, func(item diskProject, _ int) domain.Project {
		return fromDiskProject(item)
	}), nil
}

func (r *ProjectRepository) CreateTask(projectID int, title, description string, dueDate *time.Time, assignedToID string) (domain.Task, error) {
	id, err := r.nextID(r.taskSeq)
	if err != nil {
		return domain.Task{}, err
	}

	record := diskTask{
		ID:           id,
		ProjectID:    projectID,
		Title:        title,
		Description:  description,
		DueDate:      dueDate,
		AssignedToID: assignedToID,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return domain.Task{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(projectKey(projectID)); err == badger.ErrKeyNotFound {
			return errors.ErrProjectNotFound
		} else if err != nil {
			return err
		}
		if err := txn.Set(taskKey(id), data); err != nil {
			return err
		}
		return txn.Set(projectTaskKey(projectID, id), []byte(fmt.Sprintf("%d", id)))
	})
	if err != nil {
		return domain.Task{}, err
	}
	return fromDiskTask(record), nil
}

func (r *ProjectRepository) GetTask(taskID int) (domain.Task, error) {
	var record diskTask

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(taskID))
		if err == badger.ErrKeyNotFound {
			return errors.ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return domain.Task{}, err
	}
	return fromDiskTask(record), nil
}

// CompleteTask flips the completion flag. Completing an already completed
// task is a no-op that still returns the task, so callers can tell the two
// cases apart through the returned IsCompleted state they observed before.
func (r *ProjectRepository) CompleteTask(taskID int) (domain.Task, error) {
	var record diskTask

	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(taskID))
		if err == badger.ErrKeyNotFound {
			return errors.ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}
		if record.IsCompleted {
			return nil
		}
		record.IsCompleted = true
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(taskKey(taskID), data)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return fromDiskTask(record), nil
}

func fromDiskProject(p diskProject) domain.Project {
	return domain.Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
	}
}

func fromDiskTask(t diskTask) domain.Task {
	return domain.Task{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		Title:        t.Title,
		Description:  t.Description,
		DueDate:      t.DueDate,
		IsCompleted:  t.IsCompleted,
		AssignedToID: t.AssignedToID,
	}
}
